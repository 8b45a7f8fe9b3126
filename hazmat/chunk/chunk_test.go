package chunk_test

import (
	"bytes"
	"testing"

	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

func data(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func digestOf(n int, writes [][]byte) [32]byte {
	s := chunk.New(compress.IV, 0, 0)
	for _, w := range writes {
		s.Update(w)
	}
	return s.Output().RootChainingValue()
}

func TestUpdatePartitioningIsIrrelevant(t *testing.T) {
	n := 1000
	whole := digestOf(n, [][]byte{data(n)})

	partitioned := digestOf(n, [][]byte{data(n)[:1], data(n)[1:300], data(n)[300:]})
	if whole != partitioned {
		t.Fatal("splitting Update calls changed the chunk's output")
	}
}

func TestLenTracksAbsorbedBytes(t *testing.T) {
	s := chunk.New(compress.IV, 0, 0)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	s.Update(data(100))
	if s.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", s.Len())
	}
	s.Update(data(50))
	if s.Len() != 150 {
		t.Fatalf("Len() = %d, want 150", s.Len())
	}
}

func TestChainingValueNotRootBytesDiffer(t *testing.T) {
	s := chunk.New(compress.IV, 0, 0)
	s.Update(data(64))
	out := s.Output()

	cv := out.ChainingValue()
	root := out.RootChainingValue()

	if cv == compress.CVFromBytes(root) {
		t.Fatal("ChainingValue and RootChainingValue must differ (ROOT flag matters)")
	}
}

func TestOutputReaderExtendsRootChainingValue(t *testing.T) {
	s := chunk.New(compress.IV, 0, 0)
	s.Update(data(64))
	out := s.Output()
	root := out.RootChainingValue()

	r := chunk.NewOutputReader(out)
	buf := make([]byte, 96)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(buf[:32], root[:]) {
		t.Fatal("OutputReader's first 32 bytes must match RootChainingValue")
	}
}

func TestUpdatePanicsAfterOutput(t *testing.T) {
	s := chunk.New(compress.IV, 0, 0)
	s.Update(data(10))
	s.Output()

	defer func() {
		if recover() == nil {
			t.Fatal("Update after Output must panic")
		}
	}()
	s.Update(data(1))
}
