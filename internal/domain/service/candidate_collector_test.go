package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"javadocgen/internal/domain/service"
	"javadocgen/internal/domain/valueobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateCollector_Fixture(t *testing.T) {
	source, err := os.ReadFile(filepath.Join("testdata", "Inventory.java"))
	require.NoError(t, err)

	candidates, stats := collect(t, string(source))

	assert.Equal(t, []string{
		"Inventory",
		"Inventory.Inventory",
		"Inventory.remove",
		"Inventory.size",
		"Inventory.toString",
		"run",
		"Inventory.Listener",
		"Listener.onChange",
		"Inventory.Status",
		"Inventory.Builder",
		"Builder.with",
	}, names(candidates))

	require.Len(t, stats.Documented, 1)
	assert.Equal(t, "add", stats.Documented[0].Name)
	assert.Equal(t, valueobject.SkipDocumented, stats.Documented[0].Reason)
	assert.Equal(t, 12, stats.Declarations)
	assert.Equal(t, 11, stats.Candidates)

	byName := make(map[string]valueobject.Candidate)
	for _, c := range candidates {
		byName[c.QualifiedName()] = c
	}

	assert.Equal(t, valueobject.KindClass, byName["Inventory"].Kind)
	assert.Equal(t, "", byName["Inventory"].Indentation)
	assert.Equal(t, valueobject.KindConstructor, byName["Inventory.Inventory"].Kind)
	assert.Equal(t, "    ", byName["Inventory.toString"].Indentation)
	assert.Equal(t, valueobject.KindInterface, byName["Inventory.Listener"].Kind)
	assert.Equal(t, valueobject.KindEnum, byName["Inventory.Status"].Kind)
	assert.Equal(t, valueobject.KindMethod, byName["run"].Kind)
	assert.Equal(t, "            ", byName["run"].Indentation)
	assert.Empty(t, byName["run"].EnclosingName)

	for i, c := range candidates {
		assert.Equal(t, i, c.ID)
		assert.True(t, c.AtLineStart)
	}
}

func TestCandidateCollector_TwoMethods(t *testing.T) {
	source := `class Service {
    void a() {
    }

    /**
     * Runs b.
     */
    void b() {
    }
}
`
	candidates, stats := collect(t, source)

	assert.Equal(t, []string{"Service", "Service.a"}, names(candidates))
	require.Len(t, stats.Documented, 1)
	assert.Equal(t, "b", stats.Documented[0].Name)
}

func TestCandidateCollector_SkipCorrectnessIndependentOfNeighbours(t *testing.T) {
	source := `/** Documented. */
class A {
    void one() {}
    /** Documented. */
    void two() {}
    void three() {}
    /** Documented. */
    A() {}
    class Inner {
        /** Documented. */
        void four() {}
        void five() {}
    }
}
`
	candidates, stats := collect(t, source)

	assert.Equal(t, []string{"A.one", "A.three", "A.Inner", "Inner.five"}, names(candidates))
	assert.Len(t, stats.Documented, 4)
}

func TestCandidateCollector_BlankLinePolicy(t *testing.T) {
	source := "class A {\n    /** Orphan. */\n\n    void m() {}\n}\n"
	tree := parse(t, source)

	strict := service.NewCandidateCollector(service.DefaultCollectorConfig())
	candidates, _ := strict.Collect(context.Background(), tree)
	assert.Equal(t, []string{"A", "A.m"}, names(candidates))

	lenient := service.NewCandidateCollector(service.CollectorConfig{
		Policy: service.TriviaPolicy{BlankLineThreshold: 2},
	})
	candidates, _ = lenient.Collect(context.Background(), tree)
	assert.Equal(t, []string{"A"}, names(candidates))
}

func TestCandidateCollector_IsIdempotent(t *testing.T) {
	source, err := os.ReadFile(filepath.Join("testdata", "Inventory.java"))
	require.NoError(t, err)
	tree := parse(t, string(source))
	collector := service.NewCandidateCollector(service.DefaultCollectorConfig())

	first, firstStats := collector.Collect(context.Background(), tree)
	second, secondStats := collector.Collect(context.Background(), tree)

	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}

func TestCandidateCollector_KindFilter(t *testing.T) {
	source := "class A {\n    A() {}\n    void m() {}\n    enum E { X }\n}\n"
	tree := parse(t, source)

	collector := service.NewCandidateCollector(service.CollectorConfig{
		Kinds:  []valueobject.DeclarationKind{valueobject.KindMethod},
		Policy: service.DefaultTriviaPolicy(),
	})
	candidates, stats := collector.Collect(context.Background(), tree)

	assert.Equal(t, []string{"A.m"}, names(candidates))
	assert.Equal(t, 1, stats.Declarations)
}

func TestCandidateCollector_RecordsAndAnnotations(t *testing.T) {
	source := "record Point(int x, int y) {\n    Point {\n    }\n}\n\n@interface Marker {\n}\n"
	candidates, _ := collect(t, source)

	require.Len(t, candidates, 3)
	assert.Equal(t, valueobject.KindClass, candidates[0].Kind)
	assert.Equal(t, valueobject.NodeRecordDeclaration, candidates[0].NodeType)
	assert.Equal(t, "Point", candidates[0].Name)
	assert.Equal(t, valueobject.KindConstructor, candidates[1].Kind)
	assert.Equal(t, valueobject.KindInterface, candidates[2].Kind)
	assert.Equal(t, "Marker", candidates[2].Name)
}

func TestCandidateCollector_DeclarationAfterCodeOnSameLine(t *testing.T) {
	source := "class A { int x; void m() {} }\n"
	candidates, _ := collect(t, source)

	require.Len(t, candidates, 2)
	assert.True(t, candidates[0].AtLineStart)
	assert.False(t, candidates[1].AtLineStart)
	assert.Equal(t, "", candidates[1].Indentation)
}

func TestCandidateCollector_LocalAndLambdaDeclarations(t *testing.T) {
	source := `class A {
    void m() {
        class Local {
            void inner() {}
        }
        Runnable r = () -> {};
    }
}
`
	candidates, _ := collect(t, source)

	assert.Equal(t, []string{"A", "A.m", "Local", "Local.inner"}, names(candidates))
	assert.Empty(t, candidates[2].EnclosingName)
}
