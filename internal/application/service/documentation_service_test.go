package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"javadocgen/internal/adapter/outbound/mock"
	"javadocgen/internal/adapter/outbound/prompt"
	"javadocgen/internal/adapter/outbound/treesitter"
	"javadocgen/internal/application/common/logging"
	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/domain/valueobject"
	"javadocgen/internal/port/outbound"
	"javadocgen/internal/textpatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calcSource = "class Calc {\n" +
	"    int a() { return 1; }\n" +
	"\n" +
	"    /** Returns two. */\n" +
	"    int b() { return 2; }\n" +
	"}\n"

type fakeFormatter struct {
	err   error
	calls int
}

func (f *fakeFormatter) Name() string { return "fake" }

func (f *fakeFormatter) Format(_ context.Context, text []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return bytes.ReplaceAll(text, []byte("    "), []byte("\t")), nil
}

type failingParser struct{}

func (failingParser) Parse(_ context.Context, file *valueobject.SourceFile) (*valueobject.ParseTree, error) {
	return nil, fmt.Errorf("%w: %s: no tree", domain.ErrParse, file.Path())
}

func newTestService(t *testing.T, gen outbound.CommentGenerator, formatter outbound.SourceFormatter, cfg DocumentationConfig) *DocumentationService {
	t.Helper()

	parser, err := treesitter.NewJavaParser(treesitter.DefaultParserConfig())
	require.NoError(t, err)

	svc, err := NewDocumentationService(DocumentationDeps{
		Parser:        parser,
		Generator:     gen,
		Formatter:     formatter,
		PromptBuilder: prompt.Build,
	}, cfg)
	require.NoError(t, err)
	return svc
}

func sourceFile(t *testing.T, content string) *valueobject.SourceFile {
	t.Helper()
	file, err := valueobject.NewSourceFile("Calc.java", []byte(content))
	require.NoError(t, err)
	return file
}

func TestDocumentationService_DocumentsUndocumentedDeclarations(t *testing.T) {
	gen := mock.NewMockCommentGenerator()
	svc := newTestService(t, gen, nil, DefaultDocumentationConfig())

	ctx := logging.WithCorrelationID(context.Background(), "run-1")
	result, err := svc.Process(ctx, sourceFile(t, calcSource))
	require.NoError(t, err)

	expected := "/**\n" +
		" * Documents class Calc.\n" +
		" */\n" +
		"class Calc {\n" +
		"    /**\n" +
		"     * Documents method Calc.a.\n" +
		"     */\n" +
		"    int a() { return 1; }\n" +
		"\n" +
		"    /** Returns two. */\n" +
		"    int b() { return 2; }\n" +
		"}\n"
	assert.Equal(t, expected, string(result.Output))
	assert.Equal(t, result.Patched, result.Output)
	assert.True(t, result.Changed())
	assert.True(t, textpatch.IsSubsequence([]byte(calcSource), result.Output))

	report := result.Report
	assert.Equal(t, "Calc.java", report.Path)
	assert.Equal(t, "run-1", report.CorrelationID)
	assert.Equal(t, 3, report.Declarations)
	assert.Equal(t, 1, report.AlreadyDocumented)
	assert.Equal(t, 2, report.CandidatesFound)
	require.Len(t, report.Documented, 2)
	assert.Equal(t, "Calc", report.Documented[0].Name)
	assert.Equal(t, "a", report.Documented[1].Name)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Warnings)
	assert.Len(t, gen.Requests(), 2)
}

func TestDocumentationService_AllGenerationsFail(t *testing.T) {
	gen := &mock.MockCommentGenerator{Responder: func(context.Context, outbound.GenerationRequest) (string, error) {
		return "", errors.New("backend down")
	}}
	formatter := &fakeFormatter{}
	svc := newTestService(t, gen, formatter, DefaultDocumentationConfig())

	result, err := svc.Process(context.Background(), sourceFile(t, calcSource))
	require.NoError(t, err)

	assert.Equal(t, calcSource, string(result.Output))
	assert.False(t, result.Changed())
	assert.Zero(t, formatter.calls)
	assert.Equal(t, 2, result.Report.FailedCount())
	assert.Equal(t, map[string]int{string(valueobject.SkipGenerationFailed): 2}, result.Report.SkipCounts())
	assert.Contains(t, result.Report.Skipped[0].Detail, "backend down")
}

func TestDocumentationService_SkipsOversizedDeclarations(t *testing.T) {
	source := "class A {\n    void a() {}\n    void b() { int x = 1; int y = 2; }\n}\n"
	cfg := DefaultDocumentationConfig()
	cfg.Extractor.MaxDeclarationTokens = 8

	gen := mock.NewMockCommentGenerator()
	svc := newTestService(t, gen, nil, cfg)

	result, err := svc.Process(context.Background(), sourceFile(t, source))
	require.NoError(t, err)

	report := result.Report
	require.Len(t, report.Documented, 1)
	assert.Equal(t, "a", report.Documented[0].Name)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "A", report.Skipped[0].Name)
	assert.Equal(t, string(valueobject.SkipTooLarge), report.Skipped[0].Reason)
	assert.Equal(t, "b", report.Skipped[1].Name)
	assert.Equal(t, string(valueobject.SkipTooLarge), report.Skipped[1].Reason)
	assert.Len(t, gen.Requests(), 1)
	assert.True(t, textpatch.IsSubsequence([]byte(source), result.Output))
}

func TestDocumentationService_FormatterUnavailableIsAWarning(t *testing.T) {
	formatter := &fakeFormatter{err: fmt.Errorf("%w: vim not found", domain.ErrFormatterUnavailable)}
	svc := newTestService(t, mock.NewMockCommentGenerator(), formatter, DefaultDocumentationConfig())

	result, err := svc.Process(context.Background(), sourceFile(t, calcSource))
	require.NoError(t, err)

	assert.Equal(t, result.Patched, result.Output)
	assert.False(t, result.Report.Formatted)
	assert.Equal(t, "fake", result.Report.Formatter)
	require.Len(t, result.Report.Warnings, 1)
	assert.Contains(t, result.Report.Warnings[0], "formatting skipped")
}

func TestDocumentationService_FormatsPatchedText(t *testing.T) {
	formatter := &fakeFormatter{}
	svc := newTestService(t, mock.NewMockCommentGenerator(), formatter, DefaultDocumentationConfig())

	result, err := svc.Process(context.Background(), sourceFile(t, calcSource))
	require.NoError(t, err)

	assert.Equal(t, 1, formatter.calls)
	assert.True(t, result.Report.Formatted)
	assert.NotEqual(t, result.Patched, result.Output)
	assert.Contains(t, string(result.Output), "\tint a() { return 1; }")
}

func TestDocumentationService_ParseFailureIsFatal(t *testing.T) {
	svc, err := NewDocumentationService(DocumentationDeps{
		Parser:        failingParser{},
		Generator:     mock.NewMockCommentGenerator(),
		PromptBuilder: prompt.Build,
	}, DefaultDocumentationConfig())
	require.NoError(t, err)

	result, err := svc.Process(context.Background(), sourceFile(t, calcSource))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestDocumentationService_RequiresCollaborators(t *testing.T) {
	parser, err := treesitter.NewJavaParser(treesitter.DefaultParserConfig())
	require.NoError(t, err)
	gen := mock.NewMockCommentGenerator()

	tests := []struct {
		name string
		deps DocumentationDeps
	}{
		{name: "missing parser", deps: DocumentationDeps{Generator: gen, PromptBuilder: prompt.Build}},
		{name: "missing generator", deps: DocumentationDeps{Parser: parser, PromptBuilder: prompt.Build}},
		{name: "missing prompt builder", deps: DocumentationDeps{Parser: parser, Generator: gen}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocumentationService(tt.deps, DefaultDocumentationConfig())
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestDocumentationService_UsesPromptBuilder(t *testing.T) {
	parser, err := treesitter.NewJavaParser(treesitter.DefaultParserConfig())
	require.NoError(t, err)
	gen := mock.NewMockCommentGenerator()
	describe := func(ctx valueobject.DeclarationContext) string {
		return "describe " + ctx.Name
	}
	svc, err := NewDocumentationService(DocumentationDeps{
		Parser:        parser,
		Generator:     gen,
		PromptBuilder: describe,
	}, DefaultDocumentationConfig())
	require.NoError(t, err)

	file, err := valueobject.NewSourceFile("Calc.java", []byte(calcSource))
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), file)
	require.NoError(t, err)

	prompts := make([]string, 0, 2)
	for _, r := range gen.Requests() {
		prompts = append(prompts, r.Prompt)
	}
	assert.ElementsMatch(t, []string{"describe Calc", "describe a"}, prompts)
}

func TestDocumentationService_ConcurrentFiles(t *testing.T) {
	svc := newTestService(t, mock.NewMockCommentGenerator(), nil, DefaultDocumentationConfig())

	errs := make(chan error, 4)
	for i := range 4 {
		go func() {
			source := fmt.Sprintf("class C%d {\n    void run() {}\n}\n", i)
			file, err := valueobject.NewSourceFile(fmt.Sprintf("C%d.java", i), []byte(source))
			if err != nil {
				errs <- err
				return
			}
			result, err := svc.Process(context.Background(), file)
			if err == nil && len(result.Report.Documented) != 2 {
				err = fmt.Errorf("C%d: documented %d declarations", i, len(result.Report.Documented))
			}
			errs <- err
		}()
	}
	for range 4 {
		assert.NoError(t, <-errs)
	}
}
