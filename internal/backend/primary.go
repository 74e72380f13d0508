package backend

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"cropsight/internal/entity"
)

// graphEngine evaluates the full-precision ONNX graph through the OpenCV DNN
// module.
type graphEngine struct {
	mu   sync.Mutex
	net  gocv.Net
	size int
}

func newGraphEngine(path string, size int) (*graphEngine, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat model: %w", err)
	}

	if info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("model path %q is not a regular file", path)
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("read network from %q", path)
	}

	net.SetPreferableBackend(gocv.NetBackendOpenCV)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &graphEngine{net: net, size: size}, nil
}

func (r *graphEngine) infer(t *entity.ImageTensor) ([]float32, error) {
	blob, err := gocv.NewMatWithSizesFromBytes(t.Shape(), gocv.MatTypeCV32F, tensorBytes(t))
	if err != nil {
		return nil, fmt.Errorf("build input blob: %w", err)
	}
	defer blob.Close()

	// Forward mutates network state, so evaluations are serialized.
	r.mu.Lock()
	defer r.mu.Unlock()

	r.net.SetInput(blob, "")

	out := r.net.Forward("")
	defer out.Close()

	total := out.Total()
	if total == 0 {
		return nil, fmt.Errorf("network produced an empty output")
	}

	flat := out.Reshape(1, 1)
	defer flat.Close()

	vec := make([]float32, total)
	for i := 0; i < total; i++ {
		vec[i] = flat.GetFloatAt(0, i)
	}

	return vec, nil
}

func (r *graphEngine) close() error {
	return r.net.Close()
}

// tensorBytes lays the tensor out as little-endian float32 bytes for Mat
// construction.
func tensorBytes(t *entity.ImageTensor) []byte {
	raw := make([]byte, len(t.Data)*4)
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	return raw
}
