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

package host

import "strings"

// ParseBootParams parses kernel boot parameters as found in
// /proc/cmdline. Tokens of the form key=value map to their value;
// bare flags map to an empty string.
func ParseBootParams(content string) map[string]string {
	params := make(map[string]string)
	for _, token := range strings.Fields(content) {
		key, value, _ := strings.Cut(token, "=")
		params[key] = value
	}
	return params
}

// ParseKeyValues parses KEY=VALUE lines such as /etc/os-release,
// stripping surrounding quotes from values. Blank lines and comments
// are skipped.
func ParseKeyValues(content string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		out[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return out
}

// ParseSemaphoreArrays parses `ipcs -s` output into a map keyed by
// semaphore ID. Lines before the column header are ignored.
//
// Expected shape:
//
//	------ Semaphore Arrays --------
//	key        semid      owner      perms      nsems
//	0x00000000 557056     apache     600        1
func ParseSemaphoreArrays(content string) map[string]map[string]string {
	rows := parseDelimitedTable(content, "key")

	out := make(map[string]map[string]string)
	for _, row := range rows {
		semid, ok := row["semid"]
		if !ok || semid == "" {
			continue
		}
		entry := make(map[string]string, len(row)-1)
		for k, v := range row {
			if k == "semid" {
				continue
			}
			entry[k] = v
		}
		out[semid] = entry
	}
	return out
}

// parseDelimitedTable parses whitespace-delimited tabular output. Lines
// are ignored until one whose first field equals headField; that line
// provides the column names and every following non-empty line becomes
// a row. Rows shorter than the header leave trailing columns empty.
func parseDelimitedTable(content, headField string) []map[string]string {
	var (
		header []string
		rows   []map[string]string
	)
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if header == nil {
			if fields[0] == headField {
				header = fields
			}
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
