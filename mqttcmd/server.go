// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mqttcmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/GermanBionicSystems/lcd1602/hd44780"
	"github.com/sirupsen/logrus"
	mqtt "github.com/soypat/natiu-mqtt"
)

const (
	DefaultTopic      = "lcd1602/cmd"
	DefaultReplyTopic = "lcd1602/value"

	subscribeID = 0x1602
)

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// Server subscribes to the command topic and dispatches the requests it
// receives.
type Server struct {
	Dispatcher *hd44780.Dispatcher
	// ClientID is the MQTT client identifier.
	ClientID string
	// Topic defaults to DefaultTopic.
	Topic string
	// ReplyTopic defaults to DefaultReplyTopic.
	ReplyTopic string
	// Username and Password are optional broker credentials.
	Username string
	Password string
	// Logger defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// Handle decodes and dispatches one request. It returns the reply to
// publish, if any.
func (s *Server) Handle(payload []byte) ([]byte, error) {
	c, err := DecodeRequest(payload)
	if err != nil {
		return nil, err
	}
	resp, err := s.Dispatcher.Dispatch(c)
	if err != nil {
		return nil, err
	}
	if _, ok := c.(hd44780.ReadValue); ok {
		return EncodeSnapshot(resp.Snapshot), nil
	}
	if w, ok := c.(hd44780.WriteValue); ok && resp.Accepted < len(w.Text) {
		s.logger().WithFields(logrus.Fields{"accepted": resp.Accepted, "requested": len(w.Text)}).Info("write truncated")
	}
	return nil, nil
}

// Serve runs the MQTT session over conn until ctx is done or the broker
// disconnects. conn is closed on return.
func (s *Server) Serve(ctx context.Context, conn io.ReadWriteCloser) error {
	log := s.logger()
	topic, replyTopic := s.Topic, s.ReplyTopic
	if topic == "" {
		topic = DefaultTopic
	}
	if replyTopic == "" {
		replyTopic = DefaultReplyTopic
	}

	var replies [][]byte
	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 256)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			payload, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			log := log.WithField("topic", string(varPub.TopicName))
			reply, err := s.Handle(payload)
			if err != nil {
				// Malformed requests are dropped; the session goes on.
				log.WithError(err).Warn("request rejected")
				return nil
			}
			if reply != nil {
				replies = append(replies, reply)
			}
			return nil
		},
	})

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(s.ClientID))
	// Requests drive the session; no keepalive pings are sent.
	varconn.KeepAlive = 0
	if s.Username != "" {
		varconn.Username = []byte(s.Username)
		if s.Password != "" {
			varconn.Password = []byte(s.Password)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	if err := client.Connect(ctx, conn, &varconn); err != nil {
		return fmt.Errorf("mqttcmd: connect: %w", err)
	}
	log.WithField("client", s.ClientID).Info("mqtt connected")
	err := client.Subscribe(ctx, mqtt.VariablesSubscribe{
		PacketIdentifier: subscribeID,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(topic), QoS: mqtt.QoS0},
		},
	})
	if err != nil {
		return fmt.Errorf("mqttcmd: subscribe %s: %w", topic, err)
	}
	log.WithField("topic", topic).Info("mqtt subscribed")

	// A closed conn does not always disconnect the client, so ctx is checked
	// on every packet.
	for client.IsConnected() && ctx.Err() == nil {
		if err := client.HandleNext(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("mqttcmd: receive: %w", err)
		}
		for _, reply := range replies {
			vp := mqtt.VariablesPublish{TopicName: []byte(replyTopic)}
			if err := client.PublishPayload(pubFlags, vp, reply); err != nil {
				log.WithError(err).Error("mqtt publish")
			}
		}
		replies = replies[:0]
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	err = client.Err()
	if err == nil {
		err = errors.New("disconnected")
	}
	return fmt.Errorf("mqttcmd: %w", err)
}

func (s *Server) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
