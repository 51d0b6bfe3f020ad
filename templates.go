// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package qrsheet

import "fmt"

// Template is a named sheet preset.
type Template struct {
	ID          string
	Description string

	// apply copies the preset's fields onto a config.
	apply func(*Config)
}

func grid(cols, rows int, codeSize, margin, spacing float64, cutLines bool, total int) func(*Config) {
	return func(c *Config) {
		c.Columns, c.Rows = cols, rows
		c.CodeSize, c.Margin, c.Spacing = codeSize, margin, spacing
		c.CutLines = cutLines
		c.TotalCodes = total
		c.PageSize = PageLetter
	}
}

// Templates lists the presets in presentation order.
var Templates = []Template{
	{
		ID:          "business-cards",
		Description: "2×5 codes sized for business cards",
		apply:       grid(2, 5, 3, 1.5, 0.2, true, 10),
	},
	{
		ID:          "product-labels",
		Description: "4×5 small product labels",
		apply:       grid(4, 5, 2.5, 1, 0.3, true, 20),
	},
	{
		ID:          "stickers",
		Description: "5×6 stickers",
		apply:       grid(5, 6, 2, 0.8, 0.2, true, 30),
	},
	{
		ID:          "single-large",
		Description: "one large code per page",
		apply:       grid(1, 1, 8, 3, 0, false, 1),
	},
	{
		ID:          "custom",
		Description: "keep the current layout",
		apply:       func(*Config) {},
	},
}

// ApplyTemplate returns a copy of c with the preset id applied.
func (c *Config) ApplyTemplate(id string) (*Config, error) {
	for _, t := range Templates {
		if t.ID != id {
			continue
		}
		n := *c
		t.apply(&n)
		n.TemplateID = id
		return &n, nil
	}
	return nil, fmt.Errorf("unknown template %q", id)
}
