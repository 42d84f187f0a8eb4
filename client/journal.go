// Copyright (c) 2019 The Perun Authors. All rights reserved.
// This file is part of go-assessment. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

package client

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"perun.network/go-assessment/db"
	"perun.network/go-assessment/log"
)

const journalPrefix = "tx."

// Journal stores transaction records in a database.
type Journal struct {
	table db.Database
}

// NewJournal creates a journal that stores its records in d.
func NewJournal(d db.Database) *Journal {
	return &Journal{table: db.NewTable(d, journalPrefix)}
}

// Put stores or overwrites a record.
func (j *Journal) Put(tx *Tx) error {
	return errors.WithMessage(put(j.table, tx), "storing transaction record")
}

func put(w db.Writer, tx *Tx) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return errors.Wrap(err, "encoding transaction record")
	}
	return w.PutBytes(tx.ID.String(), data)
}

// Get loads the record with the given ID.
func (j *Journal) Get(id uuid.UUID) (*Tx, error) {
	data, err := j.table.GetBytes(id.String())
	if err != nil {
		return nil, errors.WithMessage(err, "loading transaction record")
	}
	tx := new(Tx)
	return tx, errors.Wrap(json.Unmarshal(data, tx), "decoding transaction record")
}

// All returns all records, oldest first.
func (j *Journal) All() ([]*Tx, error) {
	it := j.table.NewIterator()
	var txs []*Tx
	for it.Next() {
		tx := new(Tx)
		if err := json.Unmarshal(it.ValueBytes(), tx); err != nil {
			it.Release()
			return nil, errors.Wrapf(err, "decoding transaction record %s", it.Key())
		}
		txs = append(txs, tx)
	}
	if err := it.Release(); err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, k int) bool { return txs[i].Created.Before(txs[k].Created) })
	return txs, nil
}

// Recover marks records that a previous process left unfinished as Failed.
// All records are updated in one batch. It returns how many records were
// marked.
func (j *Journal) Recover() (int, error) {
	txs, err := j.All()
	if err != nil {
		return 0, err
	}
	batch := j.table.NewBatch()
	var marked []*Tx
	for _, tx := range txs {
		if tx.State.Final() {
			continue
		}
		if err := tx.failed(errors.New("interrupted")); err != nil {
			return 0, err
		}
		if err := put(batch, tx); err != nil {
			return 0, errors.WithMessage(err, "batching transaction record")
		}
		marked = append(marked, tx)
	}
	if len(marked) == 0 {
		return 0, nil
	}
	if err := batch.Apply(); err != nil {
		return 0, errors.WithMessage(err, "storing recovered transaction records")
	}
	for _, tx := range marked {
		log.WithFields(log.Fields{"id": tx.ID, "op": tx.Op}).Warn("Marked unfinished transaction as failed")
	}
	return len(marked), nil
}
