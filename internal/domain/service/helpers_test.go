package service_test

import (
	"context"
	"testing"

	"javadocgen/internal/adapter/outbound/treesitter"
	"javadocgen/internal/domain/service"
	"javadocgen/internal/domain/valueobject"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *valueobject.ParseTree {
	t.Helper()

	parser, err := treesitter.NewJavaParser(treesitter.ParserConfig{})
	require.NoError(t, err)

	file, err := valueobject.NewSourceFile("Sample.java", []byte(source))
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), file)
	require.NoError(t, err)
	return tree
}

func collect(t *testing.T, source string) ([]valueobject.Candidate, service.CollectStats) {
	t.Helper()
	tree := parse(t, source)
	return service.NewCandidateCollector(service.DefaultCollectorConfig()).Collect(context.Background(), tree)
}

func names(candidates []valueobject.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.QualifiedName())
	}
	return out
}
