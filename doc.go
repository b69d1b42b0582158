// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcd1602 is a container for the LCD1602 character display driver.
//
// hd44780 drives the display controller through the I/O expander in
// pcf857x. hd44780sim simulates the controller, mqttcmd carries commands over
// MQTT and cmd/lcd1602 is the command line front end.
package lcd1602
