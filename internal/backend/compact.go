package backend

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"cropsight/internal/entity"
)

// Named tensor slots of the exported mobile model.
const (
	compactInputName  = "input"
	compactOutputName = "output"
)

// interpreterEngine runs the quantized mobile model through onnxruntime. The
// interpreter protocol is explicit: copy the float32 input into the bound
// input slot, run the session, read the bound output slot.
type interpreterEngine struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newInterpreterEngine(path string, size, classes int) (*interpreterEngine, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(size), int64(size), 3))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		[]string{compactInputName}, []string{compactOutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &interpreterEngine{
		session: session,
		input:   input,
		output:  output,
	}, nil
}

func (r *interpreterEngine) infer(t *entity.ImageTensor) ([]float32, error) {
	// The bound slots are shared mutable state, so runs are serialized.
	r.mu.Lock()
	defer r.mu.Unlock()

	bound := r.input.GetData()
	if len(bound) != len(t.Data) {
		return nil, fmt.Errorf("bound input slot holds %d values, tensor has %d", len(bound), len(t.Data))
	}

	copy(bound, t.Data)

	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	out := r.output.GetData()
	vec := make([]float32, len(out))
	copy(vec, out)

	return vec, nil
}

func (r *interpreterEngine) close() error {
	r.input.Destroy()
	r.output.Destroy()
	r.session.Destroy()

	return nil
}
