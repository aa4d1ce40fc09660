// Copyright 2026 The CC-Profiler Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "github.com/ccprofiler/ccprofiler/internal/ccerr"

// DecodeVersioned parses data.json bytes and refuses the document if
// its schemaVersion does not match CurrentVersion, per §6: "Report
// consumers validate schemaVersion and refuse mismatches."
func DecodeVersioned(path string, data []byte) (*SessionData, error) {
	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if s.SchemaVersion != CurrentVersion {
		return nil, ccerr.NewSchema(path, s.SchemaVersion, CurrentVersion)
	}
	return s, nil
}
