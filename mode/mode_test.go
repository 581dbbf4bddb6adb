// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/fixtures"
	"github.com/wigggles/opentxs-sub024/mode"
)

func TestMode(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	assert.Nil(t, mode.Initialise(), "initialise")
	assert.Equal(t, fault.AlreadyInitialised, mode.Initialise(), "second initialise")

	assert.True(t, mode.Is(mode.Starting), "start up mode")
	assert.Equal(t, "Starting", mode.String(), "start up mode name")

	mode.Set(mode.Normal)
	assert.True(t, mode.Is(mode.Normal), "normal")
	assert.True(t, mode.IsNot(mode.Maintenance), "not maintenance")

	mode.Set(mode.Mode(99))
	assert.True(t, mode.Is(mode.Normal), "invalid set must be ignored")

	assert.Nil(t, mode.Finalise(), "finalise")
	assert.True(t, mode.Is(mode.Stopped), "stopped")
	assert.Equal(t, fault.NotInitialised, mode.Finalise(), "second finalise")
}
