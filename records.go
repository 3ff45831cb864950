// Copyright 2026 The greedytile Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package greedytile

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"
)

// EventKind describes what happened in an Event.
type EventKind string

const (
	// EventPlacement is a placed tile.
	EventPlacement EventKind = "placement"
	// EventErasure is a region erased by deadlock recovery.
	EventErasure EventKind = "erasure"
)

// Event is either a placement or an erasure. Events are the entries of the
// placement log and the frames of the animation.
type Event struct {
	Kind      EventKind  `json:"kind"`
	Placement *Placement `json:"placement,omitempty"`
	Erasure   *Erasure   `json:"erasure,omitempty"`
}

// Iteration returns the iteration in which the event happened.
func (e Event) Iteration() int {
	if e.Placement != nil {
		return e.Placement.Iteration
	}
	if e.Erasure != nil {
		return e.Erasure.Iteration
	}
	return 0
}

// Sequence returns the position of the event in the log of the run.
func (e Event) Sequence() int {
	if e.Placement != nil {
		return e.Placement.Sequence
	}
	if e.Erasure != nil {
		return e.Erasure.Sequence
	}
	return 0
}

// Events merges placements and erasures in the order in which they happened.
// Both slices must be sorted by Sequence.
func Events(placements []Placement, erasures []Erasure) []Event {
	res := make([]Event, 0, len(placements)+len(erasures))
	i, j := 0, 0
	for i < len(placements) || j < len(erasures) {
		switch {
		case j == len(erasures) || (i < len(placements) && placements[i].Sequence < erasures[j].Sequence):
			res = append(res, Event{Kind: EventPlacement, Placement: &placements[i]})
			i++
		default:
			res = append(res, Event{Kind: EventErasure, Erasure: &erasures[j]})
			j++
		}
	}
	return res
}

// WritePlacementLog writes all events as zstd compressed JSON lines.
func WritePlacementLog(w io.Writer, events []Event) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	jsonEnc := json.NewEncoder(bw)
	for _, e := range events {
		if err := jsonEnc.Encode(e); err != nil {
			enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadPlacementLog reads a log written by WritePlacementLog.
func ReadPlacementLog(r io.Reader) ([]Event, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	jsonDec := json.NewDecoder(dec)
	var res []Event
	for {
		var e Event
		if err := jsonDec.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}
