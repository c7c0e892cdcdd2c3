package mutate

import (
	"context"
	"math/rand"
	"testing"
)

type alwaysValid struct{}

func (alwaysValid) Validate(ctx context.Context, source []byte, suffix string) (bool, error) {
	return true, nil
}

func TestEngine_Generate_ProducesRequestedMutants(t *testing.T) {
	eng := NewEngine(DefaultSubMutators(), alwaysValid{}, rand.New(rand.NewSource(7)))
	out, err := eng.Generate(context.Background(), []byte(sampleModule), ".v", 3)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected at least one mutant from the sample module")
	}
	for _, m := range out {
		if len(m) == 0 {
			t.Error("got an empty mutant source")
		}
	}
}

type neverValid struct{}

func (neverValid) Validate(ctx context.Context, source []byte, suffix string) (bool, error) {
	return false, nil
}

func TestEngine_Generate_NoValidatedMutantsIsNotAnError(t *testing.T) {
	eng := NewEngine(DefaultSubMutators(), neverValid{}, rand.New(rand.NewSource(7)))
	out, err := eng.Generate(context.Background(), []byte(sampleModule), ".v", 2)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected zero mutants when the validator rejects everything, got %d", len(out))
	}
}
