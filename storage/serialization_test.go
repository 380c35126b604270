// Copyright 2025 Poiesic Systems
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


package storage

import (
	"testing"
	"time"

	"github.com/poiesic/lexqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Marshal
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			// Unmarshal
			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalPassage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		passage *core.Passage
	}{
		{
			name: "full passage",
			passage: &core.Passage{
				Id:         core.IDFromContent("civil_code.txt#0"),
				Contents:   "第十七条 十八周岁以上的自然人为成年人。",
				Source:     "civil_code.txt",
				Seq:        0,
				Vector:     []float32{0.1, 0.2, 0.3},
				InsertedAt: now,
				UpdatedAt:  now,
				Metadata:   map[string]string{"title": "总则"},
			},
		},
		{
			name: "passage without vector or metadata",
			passage: &core.Passage{
				Id:         core.ID(7),
				Contents:   "plain chunk",
				Source:     "sample.txt",
				Seq:        3,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPassage(tt.passage)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalPassage(data)
			require.NoError(t, err)

			assert.Equal(t, tt.passage.Id, decoded.Id)
			assert.Equal(t, tt.passage.Contents, decoded.Contents)
			assert.Equal(t, tt.passage.Source, decoded.Source)
			assert.Equal(t, tt.passage.Seq, decoded.Seq)
			assert.Equal(t, tt.passage.Vector, decoded.Vector)
			assert.True(t, tt.passage.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.passage.UpdatedAt.Equal(decoded.UpdatedAt))
			assert.Equal(t, tt.passage.Metadata, decoded.Metadata)
		})
	}
}
