package treesitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"javadocgen/internal/application/common/slogger"
	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/domain/valueobject"

	"github.com/alexaandru/go-sitter-forest/java"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// JavaParser is the syntax tree adapter for Java sources.
// A tree-sitter parser is not safe for concurrent use, so Parse calls are serialized.
type JavaParser struct {
	mu      sync.Mutex
	parser  *tree_sitter.Parser
	lang    *tree_sitter.Language
	config  ParserConfig
	metrics *ParserMetrics
}

// NewJavaParser creates a parser bound to the Java grammar.
func NewJavaParser(cfg ParserConfig) (*JavaParser, error) {
	cfg = cfg.withDefaults()

	parser := tree_sitter.NewParser()
	if parser == nil {
		return nil, errors.New("failed to create tree-sitter parser")
	}

	javaLang := tree_sitter.NewLanguage(java.GetLanguage())
	if !parser.SetLanguage(javaLang) {
		return nil, errors.New("failed to set Java language in tree-sitter parser")
	}

	var metrics *ParserMetrics
	if cfg.EnableMetrics {
		var err error
		metrics, err = initParserMetrics()
		if err != nil {
			slogger.WarnNoCtx("Failed to initialize parser metrics, continuing without metrics", slogger.Fields{
				"error": err.Error(),
			})
		}
	}

	return &JavaParser{
		parser:  parser,
		lang:    javaLang,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Parse builds a ParseTree for file. It fails with domain.ErrParse only when no
// tree can be produced; syntax errors stay in the tree as error nodes.
func (p *JavaParser) Parse(ctx context.Context, file *valueobject.SourceFile) (*valueobject.ParseTree, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: source file is nil", domain.ErrInvalidInput)
	}
	lang := file.Language().Name()

	if int64(len(file.Content())) > p.config.MaxSourceSize {
		p.metrics.RecordParseOperation(ctx, lang, false, 0, 0)
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrParse, file.Path(), len(file.Content()), p.config.MaxSourceSize)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.DefaultTimeout)
	defer cancel()

	start := time.Now()
	root, stats, err := p.parse(ctx, file.Content())
	duration := time.Since(start)
	if err != nil {
		p.metrics.RecordParseOperation(ctx, lang, false, duration, 0)
		slogger.Error(ctx, "Java parse failed", slogger.Fields{
			"path":  file.Path(),
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrParse, file.Path(), err)
	}

	tree, err := valueobject.NewParseTree(ctx, file.Language(), root, file.Content(), valueobject.ParseMetadata{
		ParseDuration:  duration,
		GrammarVersion: GrammarVersion,
		NodeCount:      stats.nodeCount,
		MaxDepth:       stats.maxDepth,
		ErrorCount:     stats.errorCount,
	})
	if err != nil {
		p.metrics.RecordParseOperation(ctx, lang, false, duration, 0)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrParse, file.Path(), err)
	}

	p.metrics.RecordParseOperation(ctx, lang, true, duration, stats.errorCount)

	if stats.errorCount > 0 {
		slogger.Warn(ctx, "Source contains syntax errors; affected declarations are left untouched", slogger.Fields{
			"path":        file.Path(),
			"error_nodes": stats.errorCount,
		})
	}

	return tree, nil
}

func (p *JavaParser) parse(ctx context.Context, source []byte) (*valueobject.ParseNode, conversionStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var stats conversionStats

	tree, err := p.parser.ParseString(ctx, nil, source)
	if err != nil {
		return nil, stats, fmt.Errorf("tree-sitter parsing failed: %w", err)
	}
	if tree == nil {
		return nil, stats, errors.New("tree-sitter returned no tree")
	}
	defer tree.Close()

	rootTSNode := tree.RootNode()
	if rootTSNode.IsNull() {
		return nil, stats, errors.New("tree-sitter returned an empty root node")
	}

	root := convertTreeSitterNode(rootTSNode, 1, &stats)
	return root, stats, nil
}
