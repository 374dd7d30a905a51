// Package testing provides painter-level test helpers for Canopy.
//
// RecordingPainter implements graphics.Painter and records every call as a
// DisplayOp, so tests can assert on the exact primitive sequence a frame
// issues:
//
//	p := ctesting.NewRecordingPainter(graphics.Size{Width: 100, Height: 100})
//	frame.Paint(p)
//	circles := p.Filter(ctesting.OpDrawCircle)
//
// # Op Snapshots
//
// Recorded ops can be stored as MessagePack golden files and compared:
//
//	ctesting.MatchesFile(t, "testdata/hello.ops", p.Ops())
//
// Update golden files with:
//
//	CANOPY_UPDATE_SNAPSHOTS=1 go test ./...
package testing
