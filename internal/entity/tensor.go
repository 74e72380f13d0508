package entity

// ImageTensor is a preprocessed image ready for inference: a single-image
// NHWC tensor (1, Height, Width, 3) flattened row-major into Data, channel
// values scaled to [0, 1].
type ImageTensor struct {
	Data   []float32
	Height int
	Width  int
}

// Shape returns the tensor dimensions including the leading batch axis.
func (r *ImageTensor) Shape() []int {
	return []int{1, r.Height, r.Width, 3}
}

// ProbabilityVector holds one post-softmax class distribution, index-aligned
// with the class label table.
type ProbabilityVector []float32
