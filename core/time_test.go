// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/gravity/core"
)

func TestTime(t *testing.T) {
	c := qt.New(t)

	tm := core.NewTime(core.TimeConfiguration{EventPollDelay: 5})
	defer tm.Stop()
	c.Assert(tm.EventPollDelay(), qt.Equals, 5*time.Millisecond)

	select {
	case <-tm.EventTicker().C:
	case <-time.After(time.Second):
		c.Fatal("event ticker did not tick")
	}

	zero := core.NewTime(core.TimeConfiguration{})
	defer zero.Stop()
	c.Assert(zero.EventPollDelay(), qt.Equals, time.Millisecond)
}
