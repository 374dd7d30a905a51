package graphics

// DisplayList is an immutable list of drawing operations.
// It can be replayed onto any Painter implementation.
type DisplayList struct {
	ops  []displayOp
	size Size
}

// Paint replays the recorded operations onto the provided painter.
func (d *DisplayList) Paint(painter Painter) {
	for _, op := range d.ops {
		op.execute(painter)
	}
}

// Len returns the number of recorded operations.
func (d *DisplayList) Len() int {
	return len(d.ops)
}

// Size returns the size recorded when the display list was created.
func (d *DisplayList) Size() Size {
	return d.size
}

// PictureRecorder records drawing commands into a display list.
type PictureRecorder struct {
	ops       []displayOp
	recording bool
	size      Size
}

// BeginRecording starts a new recording session.
func (r *PictureRecorder) BeginRecording(size Size) Painter {
	r.ops = r.ops[:0]
	r.recording = true
	r.size = size
	return &recordingPainter{recorder: r, size: size}
}

// EndRecording finishes the recording and returns a display list.
func (r *PictureRecorder) EndRecording() *DisplayList {
	if !r.recording {
		return &DisplayList{size: r.size}
	}
	r.recording = false
	ops := make([]displayOp, len(r.ops))
	copy(ops, r.ops)
	return &DisplayList{
		ops:  ops,
		size: r.size,
	}
}

func (r *PictureRecorder) append(op displayOp) {
	if !r.recording {
		return
	}
	r.ops = append(r.ops, op)
}

type displayOp interface {
	execute(painter Painter)
}

type recordingPainter struct {
	recorder *PictureRecorder
	size     Size
}

func (c *recordingPainter) Save() {
	c.recorder.append(opSave{})
}

func (c *recordingPainter) Restore() {
	c.recorder.append(opRestore{})
}

func (c *recordingPainter) Translate(dx, dy float64) {
	c.recorder.append(opTranslate{dx: dx, dy: dy})
}

func (c *recordingPainter) ClipRect(rect Rect) {
	c.recorder.append(opClipRect{rect: rect})
}

func (c *recordingPainter) Clear(color Color) {
	c.recorder.append(opClear{color: color})
}

func (c *recordingPainter) DrawRect(rect Rect, paint Paint) {
	c.recorder.append(opRect{rect: rect, paint: paint})
}

func (c *recordingPainter) DrawCircle(center Offset, radius float64, paint Paint) {
	c.recorder.append(opCircle{center: center, radius: radius, paint: paint})
}

func (c *recordingPainter) DrawLine(start, end Offset, paint Paint) {
	c.recorder.append(opLine{start: start, end: end, paint: paint})
}

func (c *recordingPainter) Size() Size {
	return c.size
}

type opSave struct{}

func (opSave) execute(painter Painter) {
	painter.Save()
}

type opRestore struct{}

func (opRestore) execute(painter Painter) {
	painter.Restore()
}

type opTranslate struct {
	dx, dy float64
}

func (op opTranslate) execute(painter Painter) {
	painter.Translate(op.dx, op.dy)
}

type opClipRect struct {
	rect Rect
}

func (op opClipRect) execute(painter Painter) {
	painter.ClipRect(op.rect)
}

type opClear struct {
	color Color
}

func (op opClear) execute(painter Painter) {
	painter.Clear(op.color)
}

type opRect struct {
	rect  Rect
	paint Paint
}

func (op opRect) execute(painter Painter) {
	painter.DrawRect(op.rect, op.paint)
}

type opCircle struct {
	center Offset
	radius float64
	paint  Paint
}

func (op opCircle) execute(painter Painter) {
	painter.DrawCircle(op.center, op.radius, op.paint)
}

type opLine struct {
	start, end Offset
	paint      Paint
}

func (op opLine) execute(painter Painter) {
	painter.DrawLine(op.start, op.end, op.paint)
}
