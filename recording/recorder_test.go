package recording

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/gogpu/vidgfx/backend/software"
	"github.com/gogpu/vidgfx/render"
)

func quadVerts(w, h float32) []float32 {
	return []float32{
		0, 0, 1, 1, 1, 1, 0, 0,
		w, 0, 1, 1, 1, 1, 1, 0,
		0, h, 1, 1, 1, 1, 0, 1,
		w, h, 1, 1, 1, 1, 1, 1,
	}
}

// drawDecal records a texture decal of a 2x2 source onto a 2x2 target.
func drawDecal(t *testing.T, rec *Recorder) (src, tgt render.Texture) {
	t.Helper()
	var err error
	src, err = rec.NewTexture(render.TextureDesc{Width: 2, Height: 2, Format: render.TexelRGBA8}, []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	tgt, err = rec.NewTexture(render.TextureDesc{Width: 2, Height: 2, Format: render.TexelBGRA8, Flags: render.TexTargetable}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := rec.NewBuffer(32)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.WriteBuffer(buf, quadVerts(2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := rec.Clear([]render.Texture{tgt}, render.Black); err != nil {
		t.Fatal(err)
	}
	call := &render.DrawCall{
		Targets:  []render.Texture{tgt},
		Shader:   render.ShaderTexDecal,
		Topology: render.TriangleStrip,
		Buffer:   buf,
		VertSize: 8,
		Count:    4,
		Uniforms: render.Uniforms{Transform: render.PixelOrtho(2, 2), ModColor: render.White},
	}
	call.Textures[0] = src
	if err := rec.Draw(call); err != nil {
		t.Fatal(err)
	}
	return src, tgt
}

func TestRecorderCapturesCommands(t *testing.T) {
	rec := NewRecorder(software.New())
	src, tgt := drawDecal(t, rec)

	want := []CommandType{CmdNewTexture, CmdNewTexture, CmdNewBuffer, CmdWriteBuffer, CmdClear, CmdDraw}
	cmds := rec.Commands()
	if len(cmds) != len(want) {
		t.Fatalf("recorded %d commands, want %d", len(cmds), len(want))
	}
	for i, c := range cmds {
		if c.Type() != want[i] {
			t.Errorf("command %d = %v, want %v", i, c.Type(), want[i])
		}
	}

	draws := rec.Draws()
	if len(draws) != 1 {
		t.Fatalf("Draws() = %d", len(draws))
	}
	d := draws[0]
	if d.Shader != render.ShaderTexDecal || d.BoundUnits() != 1 {
		t.Errorf("draw shader=%v units=%d", d.Shader, d.BoundUnits())
	}
	if d.Textures[0] != rec.Resources().TextureRef(src) {
		t.Error("draw references the wrong source texture")
	}
	if len(d.Targets) != 1 || d.Targets[0] != rec.Resources().TextureRef(tgt) {
		t.Error("draw references the wrong target")
	}

	s := rec.Stats()
	if s.Draws != 1 || s.DrawsByShader[render.ShaderTexDecal] != 1 || s.Clears != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.TextureUploads != 1 || s.BufferUploads != 1 {
		t.Errorf("uploads = %d textures, %d buffers", s.TextureUploads, s.BufferUploads)
	}
}

func TestRecorderSkipsFailedCalls(t *testing.T) {
	rec := NewRecorder(software.New())
	if _, err := rec.NewTexture(render.TextureDesc{Width: 0, Height: 1, Format: render.TexelR8}, nil, 0); !errors.Is(err, render.ErrInvalidSize) {
		t.Fatalf("err = %v", err)
	}
	if err := rec.Draw(&render.DrawCall{}); err == nil {
		t.Fatal("empty draw accepted")
	}
	if len(rec.Commands()) != 0 {
		t.Errorf("failed calls recorded: %v", rec.Commands())
	}
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder(software.New())
	src, _ := drawDecal(t, rec)
	ref := rec.Resources().TextureRef(src)
	rec.Reset()
	if len(rec.Commands()) != 0 || rec.Stats().Draws != 0 {
		t.Error("Reset kept commands")
	}
	if rec.Resources().TextureRef(src) != ref {
		t.Error("Reset changed texture references")
	}
}

func TestRecordingPlayback(t *testing.T) {
	rec := NewRecorder(software.New())
	_, tgt := drawDecal(t, rec)
	r := rec.FinishRecording()

	other := software.New()
	replay, err := r.Playback(other)
	if err != nil {
		t.Fatalf("Playback: %v", err)
	}
	defer replay.Destroy()

	got := replay.Texture(rec.Resources().TextureRef(tgt))
	if got == nil {
		t.Fatal("target not replayed")
	}
	wantPix, _ := tgt.(*software.Texture).Pix()
	gotPix, _ := got.(*software.Texture).Pix()
	if !bytes.Equal(wantPix, gotPix) {
		t.Errorf("replayed pixels differ:\n got %v\nwant %v", gotPix, wantPix)
	}
	if other.Draws() != 1 {
		t.Errorf("replay issued %d draws", other.Draws())
	}
}

func TestRecorderCopyAndMap(t *testing.T) {
	rec := NewRecorder(software.New())
	src, _ := drawDecal(t, rec)
	staging, err := rec.NewTexture(render.TextureDesc{Width: 2, Height: 2, Format: render.TexelRGBA8, Flags: render.TexStaging}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.CopyTexture(staging, src, image.Point{}, image.Rect(0, 0, 2, 2)); err != nil {
		t.Fatal(err)
	}
	m, err := rec.MapTexture(staging)
	if err != nil {
		t.Fatal(err)
	}
	if m.Data[0] != 255 || m.Data[4] != 0 {
		t.Errorf("mapped data = %v", m.Data[:8])
	}
	if err := rec.UnmapTexture(staging); err != nil {
		t.Fatal(err)
	}
	if rec.Stats().Copies != 1 {
		t.Errorf("Copies = %d", rec.Stats().Copies)
	}

	// Map commands are skipped on playback; the copy still lands.
	replay, err := rec.FinishRecording().Playback(software.New())
	if err != nil {
		t.Fatalf("Playback: %v", err)
	}
	pix, _ := replay.Texture(rec.Resources().TextureRef(staging)).(*software.Texture).Pix()
	if pix[0] != 255 {
		t.Errorf("replayed copy = %v", pix[:4])
	}
}

func TestRecorderSharedTextures(t *testing.T) {
	producer := software.New()
	tex, err := producer.NewTexture(render.TextureDesc{Width: 4, Height: 4, Format: render.TexelBGRA8}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	h, err := producer.ExportShared(tex)
	if err != nil {
		t.Fatal(err)
	}

	rec := NewRecorder(software.New())
	opened, err := rec.OpenShared(h)
	if err != nil {
		t.Fatalf("OpenShared: %v", err)
	}
	cmds := rec.Commands()
	if len(cmds) != 1 || cmds[0].Type() != CmdOpenShared {
		t.Fatalf("commands = %v", cmds)
	}
	if desc, ok := rec.Resources().TextureDesc(rec.Resources().TextureRef(opened)); !ok || desc.Width != 4 {
		t.Errorf("pooled desc = %+v, %v", desc, ok)
	}
}

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		c    CommandType
		want string
	}{
		{CmdNewTexture, "NewTexture"},
		{CmdDraw, "Draw"},
		{CmdFlush, "Flush"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}
