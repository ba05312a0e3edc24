package flasher

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fwtools/go-blboot/isp"
)

// exchange records one call against the mock transport.
type exchange struct {
	commandID byte
	request   []byte
}

// MockTransport simulates a device in ISP mode for testing.
type MockTransport struct {
	exchanges []exchange
	responses [][]byte
	respIdx   int
	err       error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Exchange(ctx context.Context, commandID byte, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	req := make([]byte, len(request))
	copy(req, request)
	m.exchanges = append(m.exchanges, exchange{commandID: commandID, request: req})

	if m.respIdx < len(m.responses) {
		resp := m.responses[m.respIdx]
		m.respIdx++
		return resp, nil
	}
	return nil, nil
}

func (m *MockTransport) AddResponse(data []byte) {
	m.responses = append(m.responses, data)
}

// validBootInfo is a well-formed Get Boot Info response.
func validBootInfo() []byte {
	return []byte{
		0x01, 0x00, 0x00, 0x00, // boot ROM version
		0x00, 0x00, 0x00, 0x00, // reserved
		0x00, 0xC0, 0x00, 0x00, // flash info: pin bits = 3
		0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, // chip ID
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // reserved
	}
}

func TestNewNilTransportPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil transport")
		}
	}()
	New(nil)
}

func TestBootInfo(t *testing.T) {
	mock := NewMockTransport()
	mock.AddResponse(validBootInfo())

	fl := New(mock)
	info, err := fl.BootInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.exchanges) != 1 {
		t.Fatalf("exchanges = %d, want 1", len(mock.exchanges))
	}
	if mock.exchanges[0].commandID != isp.CmdGetBootInfo {
		t.Errorf("commandID = 0x%02X, want 0x%02X", mock.exchanges[0].commandID, isp.CmdGetBootInfo)
	}
	if len(mock.exchanges[0].request) != 0 {
		t.Errorf("request = % X, want empty", mock.exchanges[0].request)
	}
	if info.FlashPin() != 3 {
		t.Errorf("FlashPin = %d, want 3", info.FlashPin())
	}
}

func TestBootInfoBadLength(t *testing.T) {
	mock := NewMockTransport()
	mock.AddResponse(make([]byte, 10))

	fl := New(mock)
	_, err := fl.BootInfo(context.Background())

	var lenErr *isp.ResponseLengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("error = %v, want ResponseLengthError", err)
	}
}

func TestErase(t *testing.T) {
	mock := NewMockTransport()
	fl := New(mock)

	if err := fl.Erase(context.Background(), 0x2000, 0x3000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.exchanges) != 1 {
		t.Fatalf("exchanges = %d, want 1", len(mock.exchanges))
	}
	want := []byte{0x00, 0x20, 0x00, 0x00, 0x00, 0x30, 0x00, 0x00}
	if !bytes.Equal(mock.exchanges[0].request, want) {
		t.Errorf("request = % X, want % X", mock.exchanges[0].request, want)
	}
}

func TestEraseUnexpectedData(t *testing.T) {
	mock := NewMockTransport()
	mock.AddResponse([]byte{0x00})

	fl := New(mock)
	err := fl.Erase(context.Background(), 0, 0x1000)

	var lenErr *isp.ResponseLengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("error = %v, want ResponseLengthError", err)
	}
}

func TestWriteChunking(t *testing.T) {
	mock := NewMockTransport()
	fl := New(mock, WithChunkSize(4))

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if err := fl.Write(context.Background(), 0x100, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.exchanges) != 3 {
		t.Fatalf("exchanges = %d, want 3", len(mock.exchanges))
	}

	wants := [][]byte{
		{0x00, 0x01, 0x00, 0x00, 1, 2, 3, 4},
		{0x04, 0x01, 0x00, 0x00, 5, 6, 7, 8},
		{0x08, 0x01, 0x00, 0x00, 9, 10},
	}
	for i, want := range wants {
		if mock.exchanges[i].commandID != isp.CmdWriteFlash {
			t.Errorf("exchange %d: commandID = 0x%02X, want 0x%02X",
				i, mock.exchanges[i].commandID, isp.CmdWriteFlash)
		}
		if !bytes.Equal(mock.exchanges[i].request, want) {
			t.Errorf("exchange %d: request = % X, want % X", i, mock.exchanges[i].request, want)
		}
	}
}

func TestFlashSequence(t *testing.T) {
	mock := NewMockTransport()
	mock.AddResponse(validBootInfo())

	var progress []Progress
	fl := New(mock,
		WithChunkSize(256),
		WithProgressCallback(func(p Progress) { progress = append(progress, p) }),
	)

	image := bytes.Repeat([]byte{0xAB}, 600)
	if err := fl.Flash(context.Background(), 0x10000, image); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// boot info + erase + 3 write chunks
	if len(mock.exchanges) != 5 {
		t.Fatalf("exchanges = %d, want 5", len(mock.exchanges))
	}

	wantIDs := []byte{
		isp.CmdGetBootInfo,
		isp.CmdEraseFlash,
		isp.CmdWriteFlash,
		isp.CmdWriteFlash,
		isp.CmdWriteFlash,
	}
	for i, want := range wantIDs {
		if mock.exchanges[i].commandID != want {
			t.Errorf("exchange %d: commandID = 0x%02X, want 0x%02X",
				i, mock.exchanges[i].commandID, want)
		}
	}

	// erase must cover exactly the image range
	wantErase := []byte{0x00, 0x00, 0x01, 0x00, 0x58, 0x02, 0x01, 0x00} // 0x10000, 0x10258
	if !bytes.Equal(mock.exchanges[1].request, wantErase) {
		t.Errorf("erase request = % X, want % X", mock.exchanges[1].request, wantErase)
	}

	if len(progress) == 0 {
		t.Fatal("no progress reported")
	}
	first := progress[0]
	if first.Phase != PhaseQuerying {
		t.Errorf("first phase = %q, want %q", first.Phase, PhaseQuerying)
	}
	last := progress[len(progress)-1]
	if last.Phase != PhaseComplete {
		t.Errorf("last phase = %q, want %q", last.Phase, PhaseComplete)
	}
	if last.BytesWritten != len(image) || last.Percentage != 100 {
		t.Errorf("final progress = %+v, want all bytes at 100%%", last)
	}
}

func TestFlashEmptyImage(t *testing.T) {
	fl := New(NewMockTransport())
	if err := fl.Flash(context.Background(), 0, nil); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestFlashTransportError(t *testing.T) {
	mock := NewMockTransport()
	mock.err = errors.New("link lost")

	fl := New(mock)
	err := fl.Flash(context.Background(), 0, []byte{1})
	if err == nil || !errors.Is(err, mock.err) {
		t.Errorf("error = %v, want wrapped %v", err, mock.err)
	}
}

func TestFlashCancelled(t *testing.T) {
	mock := NewMockTransport()
	mock.AddResponse(validBootInfo())

	ctx, cancel := context.WithCancel(context.Background())
	fl := New(mock, WithChunkSize(1), WithProgressCallback(func(p Progress) {
		if p.Phase == PhaseWriting {
			cancel()
		}
	}))

	err := fl.Flash(ctx, 0, bytes.Repeat([]byte{0x01}, 16))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
