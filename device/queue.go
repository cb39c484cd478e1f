// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/cockroachdb/errors"
)

// QueueSelection holds the queue family indices a logical device is
// created with.
type QueueSelection struct {
	Graphics int
	Present  int
	Separate bool
}

// ResolveQueues finds a graphics and a present queue family. The first
// family capable of both wins immediately, otherwise the first graphics
// family and the first present-only family seen are used.
func ResolveQueues(families []QueueFamilyDescriptor) (QueueSelection, error) {
	graphics, present := -1, -1
	for i, family := range families {
		if family.Graphics {
			if family.Present {
				return QueueSelection{Graphics: i, Present: i}, nil
			}
			if graphics < 0 {
				graphics = i
			}
		} else if family.Present && present < 0 {
			present = i
		}
	}

	if graphics < 0 || present < 0 {
		return QueueSelection{}, errors.Wrapf(ErrNoQueueFamily,
			"%d families, graphics %v, present %v", len(families), graphics >= 0, present >= 0)
	}
	return QueueSelection{Graphics: graphics, Present: present, Separate: true}, nil
}

// QueueInfos returns the queues to request for sel.
func (sel QueueSelection) QueueInfos() []QueueInfo {
	infos := []QueueInfo{{
		FamilyIndex: sel.Graphics,
		Priorities:  []float32{0.0},
	}}
	if sel.Separate {
		infos = append(infos, QueueInfo{
			FamilyIndex: sel.Present,
			Priorities:  []float32{0.0},
		})
	}
	return infos
}
