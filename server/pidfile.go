// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/wigggles/opentxs-sub024/fault"
)

// pidFile - single instance lock for a data directory
//
// the file holds the PID of the running notary, 0 when stopped
type pidFile struct {
	path string
}

// lockPidFile - claim the data directory
func lockPidFile(path string) (*pidFile, error) {
	data, err := ioutil.ReadFile(path)
	if nil == err {
		text := strings.TrimSpace(string(data))
		if "" != text {
			pid, err := strconv.Atoi(text)
			if nil != err || pid < 0 {
				return nil, fault.InvalidPidFile
			}
			if 0 != pid {
				return nil, fault.AnotherInstanceRunning
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	p := &pidFile{path: path}
	if err := p.write(os.Getpid()); nil != err {
		return nil, err
	}
	return p, nil
}

func (p *pidFile) write(pid int) error {
	return ioutil.WriteFile(p.path, []byte(strconv.Itoa(pid)+"\n"), 0600)
}

// release - mark the directory as free
func (p *pidFile) release() error {
	return p.write(0)
}
