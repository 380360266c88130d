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

// Package cmp helps give types canonical string forms that are cheap to
// build and compare.
package cmp

import "strings"

// Key is implemented by types that can append a canonical string form of
// themselves to a strings.Builder. Two values of the same type are equivalent
// exactly when their keys are equal.
type Key interface {
	Key(b *strings.Builder)
}

// GetKey returns the canonical string form of k.
func GetKey(k Key) string {
	b := strings.Builder{}
	b.Grow(32)
	k.Key(&b)
	return b.String()
}
