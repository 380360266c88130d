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

package cmp

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	name  string
	count int
}

func (p *pair) Key(b *strings.Builder) {
	b.WriteString(p.name)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.count))
}

func Test_GetKey(t *testing.T) {
	assert.Equal(t, "alice 3", GetKey(&pair{name: "alice", count: 3}))
	assert.Equal(t, " 0", GetKey(&pair{}))
	a := &pair{name: "x", count: 1}
	b := &pair{name: "x", count: 1}
	assert.Equal(t, GetKey(a), GetKey(b))
}
