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


package core

import (
	"errors"
	"testing"
)

func TestValidatePassage(t *testing.T) {
	tests := []struct {
		name    string
		passage *Passage
		wantErr error
	}{
		{
			name: "valid passage",
			passage: &Passage{
				Contents: "第十七条 十八周岁以上的自然人为成年人。",
				Source:   "civil_code.txt",
				Seq:      0,
			},
			wantErr: nil,
		},
		{
			name: "valid passage with metadata",
			passage: &Passage{
				Contents: "some chunk",
				Source:   "sample.txt",
				Seq:      4,
				Metadata: map[string]string{"title": "总则"},
			},
			wantErr: nil,
		},
		{
			name:    "nil passage",
			passage: nil,
			wantErr: ErrInvalidPassage,
		},
		{
			name: "empty contents",
			passage: &Passage{
				Contents: "",
				Source:   "civil_code.txt",
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "empty source",
			passage: &Passage{
				Contents: "some chunk",
				Source:   "",
			},
			wantErr: ErrEmptySource,
		},
		{
			name: "negative sequence",
			passage: &Passage{
				Contents: "some chunk",
				Source:   "civil_code.txt",
				Seq:      -1,
			},
			wantErr: ErrNegativeSeq,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassage(tt.passage)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePassage() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassage() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidPassage) {
				t.Errorf("ValidatePassage() error = %v, should wrap ErrInvalidPassage", err)
			}
		})
	}
}
