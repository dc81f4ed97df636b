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

package persist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_documents_persisted_total",
		Help: "Component documents written successfully.",
	})

	documentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_documents_failed_total",
		Help: "Component documents that could not be written.",
	})

	filesRelocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_files_relocated_total",
		Help: "Oversized files relocated into the raw data area.",
	})

	bytesRelocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triage_relocated_bytes_total",
		Help: "Bytes written while relocating oversized files.",
	})
)
