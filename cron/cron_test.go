// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/wigggles/opentxs-sub024/background"
	"github.com/wigggles/opentxs-sub024/cron"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/mocks"
)

func TestActivateCron(t *testing.T) {
	env := setup(t)
	defer env.done()

	c := env.newCron(&sequence{}, cron.Configuration{})
	err := c.AddItem(&counter{number: 1, nymID: alice})
	assert.Equal(t, fault.CronNotActivated, err, "add before activation")

	assert.Nil(t, c.ActivateCron(), "activate")
	assert.Nil(t, c.ActivateCron(), "activate again")
	assert.True(t, c.IsActivated(), "activated")
}

func TestRefill(t *testing.T) {
	env := setup(t)
	defer env.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	issuer := mocks.NewMockIssuer(ctl)
	next := int64(100)
	issuer.EXPECT().IssueNextTransactionNumber().DoAndReturn(func() (int64, error) {
		next += 1
		return next, nil
	}).Times(6)

	c := env.newCron(issuer, cron.Configuration{RefillAmount: 5})
	assert.Nil(t, c.ActivateCron(), "activate")

	ctx := mocks.NewMockContext(ctl)
	assert.Nil(t, c.ProcessCron(ctx), "first tick")
	assert.Equal(t, 5, c.PoolSize(), "pool after refill")

	n, err := c.TakeNumber()
	assert.Nil(t, err, "take")
	assert.Equal(t, int64(101), n, "lowest number first")
	assert.Equal(t, 4, c.PoolSize(), "pool after take")

	assert.Nil(t, c.ProcessCron(ctx), "second tick")
	assert.Equal(t, 5, c.PoolSize(), "topped up")
}

func TestTakeNumberExhausted(t *testing.T) {
	env := setup(t)
	defer env.done()

	c := env.newCron(&sequence{}, cron.Configuration{})
	_, err := c.TakeNumber()
	assert.Equal(t, fault.CronNumbersExhausted, err, "empty pool")
}

func TestRefillFailureSkipsTick(t *testing.T) {
	env := setup(t)
	defer env.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	failure := errors.New("disk full")
	issuer := &sequence{fail: failure}
	c := env.newCron(issuer, cron.Configuration{})
	assert.Nil(t, c.ActivateCron(), "activate")

	item := &counter{number: 1, nymID: alice}
	assert.Nil(t, c.AddItem(item), "add")

	ctx := mocks.NewMockContext(ctl)
	err := c.ProcessCron(ctx)
	assert.Equal(t, failure, err, "tick error")
	assert.Equal(t, 0, item.Ticks(), "item not processed")

	issuer.fail = nil
	assert.Nil(t, c.ProcessCron(ctx), "retry next tick")
	assert.Equal(t, 1, item.Ticks(), "item processed")
}

func TestItemLimit(t *testing.T) {
	env := setup(t)
	defer env.done()

	c := env.newCron(&sequence{}, cron.Configuration{MaximumItemsPerNym: 2})
	assert.Nil(t, c.ActivateCron(), "activate")

	assert.Nil(t, c.AddItem(&counter{number: 1, nymID: alice}), "first")
	assert.Nil(t, c.AddItem(&counter{number: 2, nymID: alice}), "second")
	err := c.AddItem(&counter{number: 3, nymID: alice})
	assert.Equal(t, fault.CronItemLimitExceeded, err, "over the limit")
	assert.Equal(t, 2, c.CountForNym(alice), "no item dropped")

	assert.Nil(t, c.AddItem(&counter{number: 3, nymID: bob}), "other nym")

	err = c.AddItem(&counter{number: 1, nymID: bob})
	assert.Equal(t, fault.CronItemAlreadyActive, err, "duplicate number")
}

func TestCancelTakesEffectNextTick(t *testing.T) {
	env := setup(t)
	defer env.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := env.newCron(&sequence{}, cron.Configuration{})
	assert.Nil(t, c.ActivateCron(), "activate")

	item := &counter{number: 7, nymID: alice}
	assert.Nil(t, c.AddItem(item), "add")

	assert.Equal(t, fault.CommandNotAllowed, c.CancelItem(7, bob), "not the owner")
	assert.Equal(t, fault.CronItemNotFound, c.CancelItem(8, alice), "missing")
	assert.Nil(t, c.CancelItem(7, alice), "cancel")
	assert.True(t, c.IsCancelled(7), "marked")
	assert.Equal(t, 1, c.Count(), "still present until the tick")

	ctx := mocks.NewMockContext(ctl)
	ctx.EXPECT().FinalReceipt(gomock.Any()).DoAndReturn(func(f cron.Final) error {
		assert.True(t, f.Cancelled, "cancelled")
		assert.Equal(t, int64(7), f.Item.Number(), "number")
		assert.Equal(t, 1, len(f.Closings), "closings")
		return nil
	})

	assert.Nil(t, c.ProcessCron(ctx), "tick")
	assert.Equal(t, 0, c.Count(), "removed")
	assert.Equal(t, 0, item.Ticks(), "not processed")
	assert.True(t, item.finished, "finish hook")
	assert.False(t, env.folders.Exists("cron", "7.item"), "file erased")
}

func TestItemFinishes(t *testing.T) {
	env := setup(t)
	defer env.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := env.newCron(&sequence{}, cron.Configuration{})
	assert.Nil(t, c.ActivateCron(), "activate")

	item := &counter{number: 3, nymID: alice, limit: 2}
	assert.Nil(t, c.AddItem(item), "add")

	ctx := mocks.NewMockContext(ctl)
	ctx.EXPECT().FinalReceipt(gomock.Any()).DoAndReturn(func(f cron.Final) error {
		assert.False(t, f.Cancelled, "not cancelled")
		return nil
	})

	assert.Nil(t, c.ProcessCron(ctx), "tick 1")
	assert.Equal(t, 1, c.Count(), "active")
	assert.Nil(t, c.ProcessCron(ctx), "tick 2")
	assert.Equal(t, 0, c.Count(), "finished")
}

func TestReload(t *testing.T) {
	env := setup(t)
	defer env.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := env.newCron(&sequence{}, cron.Configuration{})
	assert.Nil(t, c.ActivateCron(), "activate")
	assert.Nil(t, c.AddItem(&counter{number: 1, nymID: alice}), "add 1")
	assert.Nil(t, c.AddItem(&counter{number: 2, nymID: bob}), "add 2")
	assert.Nil(t, c.CancelItem(2, bob), "cancel 2")

	ctx := mocks.NewMockContext(ctl)
	ctx.EXPECT().FinalReceipt(gomock.Any()).Return(nil)
	assert.Nil(t, c.ProcessCron(ctx), "tick")
	assert.Nil(t, c.AddItem(&counter{number: 4, nymID: bob}), "add 4")
	assert.Nil(t, c.CancelItem(4, bob), "cancel 4")

	reloaded := env.newCron(&sequence{}, cron.Configuration{})
	assert.Nil(t, reloaded.ActivateCron(), "activate reloaded")
	assert.Equal(t, 2, reloaded.Count(), "items")

	item, ok := reloaded.Item(1)
	assert.True(t, ok, "item 1")
	assert.Equal(t, 1, item.(*counter).Ticks(), "ticks persisted")
	assert.True(t, reloaded.IsCancelled(4), "cancellation persisted")
}

func TestHeartbeat(t *testing.T) {
	env := setup(t)
	defer env.done()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := env.newCron(&sequence{}, cron.Configuration{Heartbeat: 10 * time.Millisecond})
	assert.Nil(t, c.ActivateCron(), "activate")
	item := &counter{number: 1, nymID: alice}
	assert.Nil(t, c.AddItem(item), "add")

	ctx := mocks.NewMockContext(ctl)
	processes := background.Start(background.Processes{c}, ctx)
	for i := 0; i < 200 && item.Ticks() < 3; i += 1 {
		time.Sleep(5 * time.Millisecond)
	}
	processes.Stop()

	assert.True(t, item.Ticks() >= 3, "ticks")
}
