package nnue

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Quantization constants. QA bounds the clipped-ReLU activation applied to
// accumulator outputs; QB is the weight quantization scale of the output
// layer. The final scalar is divided by QA*QB to return to centipawn scale.
const (
	QA = 255
	QB = 64
)

// Network holds the immutable, load-once weight tensors: a 768->H feature
// transformer shared by both perspectives, and 16 phase-selected output
// heads over the concatenated 2H activation vector.
type Network struct {
	FeatureWeights [InputSize][H]int16
	FeatureBias    [H]int16
	OutputWeights  [Buckets][2 * H]int16
	OutputBias     [Buckets]int32
}

// magic identifies the weight-artifact format at the head of the file.
const magic = "CORVIDNNUE1"

// LoadNetwork reads a weight artifact with the documented layout:
//
//	[11]byte  magic "CORVIDNNUE1"
//	int16 x (768*H)   feature weights, row-major [feature][hidden]
//	int16 x H         feature bias
//	int16 x (16*2H)   output weights, row-major [bucket][2H]
//	int32 x 16        output bias
//
// all little-endian. A malformed or truncated artifact is a fatal
// construction error; there is no partial/recovered load.
func LoadNetwork(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: open weights: %w", err)
	}
	defer f.Close()
	return ReadNetwork(bufio.NewReader(f))
}

func ReadNetwork(r io.Reader) (*Network, error) {
	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("nnue: reading magic: %w", err)
	}
	if string(hdr) != magic {
		return nil, fmt.Errorf("nnue: bad magic %q, weight artifact is corrupt or wrong format", hdr)
	}

	net := &Network{}
	read16 := func(dst []int16) error {
		buf := make([]byte, 2*len(dst))
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		for i := range dst {
			dst[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
		}
		return nil
	}

	for i := range net.FeatureWeights {
		if err := read16(net.FeatureWeights[i][:]); err != nil {
			return nil, fmt.Errorf("nnue: truncated feature weights at row %d: %w", i, err)
		}
	}
	if err := read16(net.FeatureBias[:]); err != nil {
		return nil, fmt.Errorf("nnue: truncated feature bias: %w", err)
	}
	for i := range net.OutputWeights {
		if err := read16(net.OutputWeights[i][:]); err != nil {
			return nil, fmt.Errorf("nnue: truncated output weights at bucket %d: %w", i, err)
		}
	}
	buf := make([]byte, 4*Buckets)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("nnue: truncated output bias: %w", err)
	}
	for i := range net.OutputBias {
		net.OutputBias[i] = int32(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return net, nil
}

// NewZeroNetwork returns an all-zero network, useful as a deterministic
// fallback when no weight artifact is configured (every position evaluates
// to the output bias, i.e. 0).
func NewZeroNetwork() *Network {
	return &Network{}
}
