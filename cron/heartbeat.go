// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron

import (
	"time"
)

// Run - the heartbeat, for background.Process
//
// args must be the Context given to each tick
func (c *Cron) Run(args interface{}, shutdown <-chan struct{}) {
	ctx := args.(Context)
	log := c.log

	log.Infof("heartbeat: %s", c.config.Heartbeat)
	ticker := time.NewTicker(c.config.Heartbeat)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			if err := c.ProcessCron(ctx); nil != err {
				log.Debugf("tick: %s", err)
			}
		}
	}
	log.Info("shutting down…")
	log.Flush()
}
