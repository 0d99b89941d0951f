// Package vfstest is a reusable testify-driven conformance suite for a
// vfs.Manager, built the way marmos91-dnfs's pkg/metadata/testing
// package drives its StoreTestSuite: a factory function builds a fresh
// backend per test, and RunAll dispatches one testing.T.Run per case so
// failures are reported by name instead of one monolithic test.
package vfstest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coopvfs/coopvfs/pkg/vfs"
)

// Suite exercises the universal invariants and end-to-end scenarios a
// conforming Manager must satisfy, independent of how it was
// constructed.
type Suite struct {
	// NewManager builds a fresh, empty Manager for each test case.
	NewManager func() *vfs.Manager
}

// RunAll runs every case in this suite under t, each as its own
// sub-test.
func (s Suite) RunAll(t *testing.T) {
	cases := map[string]func(*testing.T, *vfs.Manager){
		"CreateThenStatRoundTrips":        testCreateThenStatRoundTrips,
		"RemoveDetachesNameNotDescriptor":  testRemoveDetachesNameNotDescriptor,
		"EachDescriptorHasIndependentOffset": testEachDescriptorHasIndependentOffset,
		"SymlinkLoopReturnsELOOP":         testSymlinkLoopReturnsELOOP,
		"RmdirRequiresEmpty":              testRmdirRequiresEmpty,
		"TruncateExtendsWithZeros": testTruncateExtendsWithZeros,
		"PipeWriteAfterReaderCloseReturnsEPIPE": testPipeWriteAfterReaderCloseReturnsEPIPE,
		"UmaskMasksPermissionBitsNotType":  testUmaskMasksPermissionBitsNotType,
		"DupSharesOffset": testDupSharesOffset,

		"ScenarioCreateWriteReadBack":      scenarioCreateWriteReadBack,
		"ScenarioMkdirRenameListing":       scenarioMkdirRenameListing,
		"ScenarioPipeProducerConsumer":     scenarioPipeProducerConsumer,
		"ScenarioSymlinkResolution":        scenarioSymlinkResolution,
		"ScenarioStreamSocketEcho":         scenarioStreamSocketEcho,
		"ScenarioDatagramSocketExchange":   scenarioDatagramSocketExchange,
		"ScenarioSocketMsgFlags":           scenarioSocketMsgFlags,
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			fn(t, s.NewManager())
		})
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}
