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

package defaults

import "testing"

func TestTimeoutRelationships(t *testing.T) {
	if CommandTimeout <= 0 {
		t.Fatal("command timeout must be positive")
	}
	if SystemdTimeout < CommandTimeout {
		t.Error("systemd capture spans several D-Bus calls and needs at least the command timeout")
	}
	if CommandsPerSecond < 0 {
		t.Error("negative rate limit is meaningless")
	}
}
