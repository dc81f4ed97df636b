// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"6", Version{Major: 6, Precision: 1}},
		{"6.8", Version{Major: 6, Minor: 8, Precision: 2}},
		{"6.8.0", Version{Major: 6, Minor: 8, Patch: 0, Precision: 3}},
		{"v1.28.3", Version{Major: 1, Minor: 28, Patch: 3, Precision: 3}},
		{"6.8.0-45-generic", Version{Major: 6, Minor: 8, Precision: 3, Extras: "-45-generic"}},
		{"1.28.0+k3s1", Version{Major: 1, Minor: 28, Precision: 3, Extras: "+k3s1"}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			v, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrEmptyVersion},
		{"too many", "1.2.3.4", ErrTooManyComponents},
		{"non numeric", "6.x.0", ErrNonNumeric},
		{"negative", "-1.2", ErrNegativeComponent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestString(t *testing.T) {
	v, err := Parse("6.8.0-45-generic")
	require.NoError(t, err)
	assert.Equal(t, "6.8.0", v.String())

	v, err = Parse("6.8")
	require.NoError(t, err)
	assert.Equal(t, "6.8", v.String())
}

func TestEqualsOrNewer(t *testing.T) {
	v68 := Version{Major: 6, Minor: 8, Precision: 2}
	v670 := Version{Major: 6, Minor: 7, Patch: 9, Precision: 3}
	v681 := Version{Major: 6, Minor: 8, Patch: 1, Precision: 3}

	assert.True(t, v68.EqualsOrNewer(v670))
	assert.True(t, v68.EqualsOrNewer(v681), "precision 2 ignores patch")
	assert.True(t, v681.EqualsOrNewer(v681))
	assert.False(t, v670.EqualsOrNewer(v681))
}
