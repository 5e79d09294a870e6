// Copyright (C) 2021 Magnus Karlsen
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package rest

import (
	"testing"
)

func TestIsPathAllowed(t *testing.T) {
	tests:=[]struct{ path string; want bool }{
		{"",                  true},
		{"out.tif",           true},
		{"data/ch1.tif",      true},
		{"data/*.tif",        true},
		{"..",                false},
		{"../out.tif",        false},
		{"data/../../x.tif",  false},
		{"/etc/passwd",       false},
	}
	for _,tc:=range tests {
		if got:=isPathAllowed(tc.path); got!=tc.want {
			t.Errorf("isPathAllowed(%q)=%v; want %v", tc.path, got, tc.want)
		}
	}
}
