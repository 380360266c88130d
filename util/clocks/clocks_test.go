// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_WallNow(t *testing.T) {
	before := time.Now()
	now := Wall.Now()
	after := time.Now()
	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func Test_MockNow(t *testing.T) {
	clock := NewMock()
	assert.Equal(t, time.Unix(0, 0), clock.Now())
	assert.Equal(t, clock.Now(), clock.Now(), "mock clock must not advance on its own")
}

func Test_MockAdvance(t *testing.T) {
	clock := NewMock()
	start := clock.Now()
	clock.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, clock.Now().Sub(start))
	clock.Advance(time.Millisecond)
	assert.Equal(t, 3*time.Second+time.Millisecond, clock.Now().Sub(start))
}
