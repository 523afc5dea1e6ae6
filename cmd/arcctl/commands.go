package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"arc-backend/internal/cache"
	"arc-backend/internal/config"
	"arc-backend/internal/db"
	"arc-backend/internal/engine"
	"arc-backend/internal/model"
	"arc-backend/internal/questionnaire"
	"arc-backend/internal/report"
	"arc-backend/internal/repository"
)

// loadAnswers reads answers from path, or stdin for "-". Both a bare
// {"Q1": ...} object and the API's {"answers": {...}} body are accepted.
func loadAnswers(path string) (map[string]questionnaire.Answer, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Answers map[string]questionnaire.Answer `json:"answers"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Answers != nil {
		return wrapped.Answers, nil
	}
	var answers map[string]questionnaire.Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return answers, nil
}

// scoreFile runs the engine against the built-in catalog.
func scoreFile(path, persona string, strict bool) (*engine.Report, error) {
	answers, err := loadAnswers(path)
	if err != nil {
		return nil, codeError(3, "%v", err)
	}
	cfg, err := questionnaire.Load(persona)
	if err != nil {
		return nil, codeError(3, "%v", err)
	}
	responses, unknown := questionnaire.Canonicalize(cfg, answers)
	_, products := repository.DefaultCatalog()
	rep, err := engine.Run(cfg, responses, model.EngineProducts(products), engine.Options{Strict: strict})
	if err != nil {
		if errors.Is(err, questionnaire.ErrUnknownLabel) {
			return nil, codeError(2, "%v", err)
		}
		return nil, err
	}
	rep.Unknown = unknown
	return rep, nil
}

func runScore(w io.Writer, path string, flags scoreFlags) error {
	rep, err := scoreFile(path, flags.persona, flags.strict)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if flags.pretty || isTerminal(w) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runPDF(ctx context.Context, path string, flags pdfFlags) error {
	rep, err := scoreFile(path, flags.persona, false)
	if err != nil {
		return err
	}
	gen, err := report.NewGenerator(flags.templateDir)
	if err != nil {
		return codeError(3, "%v", err)
	}
	user := report.User{Name: flags.name, Email: flags.email, Age: flags.age}
	pdf, err := gen.Generate(ctx, report.FromEngine(user, rep, "", time.Now().UTC()))
	if err != nil {
		return err
	}
	if err := os.WriteFile(flags.out, pdf, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", flags.out, len(pdf))
	return nil
}

func runSeed(ctx context.Context, w io.Writer, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return codeError(3, "%v", err)
	}
	gdb, err := db.Open(cfg.Env.DatabaseURL, cfg.DB)
	if err != nil {
		return codeError(3, "%v", err)
	}
	if err := gdb.WithContext(ctx).AutoMigrate(&model.CatalogProvider{}, &model.CatalogProduct{}); err != nil {
		return fmt.Errorf("migrating catalog tables: %w", err)
	}

	providers, products := repository.DefaultCatalog()
	if err := repository.NewCatalogRepository(gdb).UpsertCatalog(ctx, providers, products); err != nil {
		return err
	}
	fmt.Fprintf(w, "seeded %d providers and %d products\n", len(providers), len(products))

	if cfg.Env.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Env.RedisAddr, cfg.Cache.RedisDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cache not invalidated: %v\n", err)
			return nil
		}
		defer rdb.Close()
		if err := cache.Invalidate(ctx, cache.NewRedisStore(rdb)); err != nil {
			fmt.Fprintf(os.Stderr, "cache not invalidated: %v\n", err)
		}
	}
	return nil
}

func runPersonas(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERSONA\tVERSION\tQUESTIONS")
	for _, p := range questionnaire.Personas() {
		cfg, err := questionnaire.Load(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", cfg.Persona, cfg.Version, len(cfg.Questions))
	}
	return tw.Flush()
}
