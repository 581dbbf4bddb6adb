// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron

import (
	"strconv"
	"strings"

	"github.com/wigggles/opentxs-sub024/armor"
	"github.com/wigggles/opentxs-sub024/fault"
	"github.com/wigggles/opentxs-sub024/storage"
)

// armor headers of a persisted item
const (
	headerKind      = "Kind"
	headerNumber    = "Number"
	headerCancelled = "Cancelled"
)

func (c *Cron) saveItem(e *entry) error {
	data, err := e.item.Marshal()
	if nil != err {
		return err
	}
	headers := map[string]string{
		headerKind:      e.item.Kind(),
		headerNumber:    strconv.FormatInt(e.item.Number(), 10),
		headerCancelled: strconv.FormatBool(e.cancelled),
	}
	text := armor.Encode(armor.LabelCronItem, headers, data)
	return c.folders.Save([]byte(text), storage.Cron, itemFileName(e.item.Number()))
}

// an item that cannot be decoded is left on disk and skipped
func (c *Cron) loadItems() error {
	names, err := c.folders.List(storage.Cron)
	if nil != err {
		return err
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".item") {
			continue
		}
		data, err := c.folders.Load(storage.Cron, name)
		if nil != err {
			return err
		}
		e, err := c.decodeItem(data)
		if nil != err {
			c.log.Errorf("item file: %q  error: %s", name, err)
			continue
		}
		c.items[e.item.Number()] = e
	}
	return nil
}

func (c *Cron) decodeItem(text []byte) (*entry, error) {
	block, err := armor.DecodeLabel(string(text), armor.LabelCronItem)
	if nil != err {
		return nil, err
	}
	decoder, ok := c.decoders[block.Headers[headerKind]]
	if !ok {
		return nil, fault.InvalidContents
	}
	item, err := decoder(block.Data)
	if nil != err {
		return nil, err
	}
	n, err := strconv.ParseInt(block.Headers[headerNumber], 10, 64)
	if nil != err || n != item.Number() {
		return nil, fault.IdentifierMismatch
	}
	if _, ok := c.items[n]; ok {
		return nil, fault.CronItemAlreadyActive
	}
	return &entry{
		item:      item,
		cancelled: "true" == block.Headers[headerCancelled],
	}, nil
}
