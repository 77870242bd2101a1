package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/annel0/chunk-inspector/internal/analysis"
	"github.com/annel0/chunk-inspector/internal/auth"
	"github.com/annel0/chunk-inspector/internal/chunk"
	"github.com/annel0/chunk-inspector/internal/collider"
	"github.com/annel0/chunk-inspector/internal/config"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/save"
	"github.com/annel0/chunk-inspector/internal/vec"
)

// sourceFlags - общий способ указать сохранение: файл или имя в хранилище
type sourceFlags struct {
	path     *string
	storeDir *string
	name     *string
}

func addSourceFlags(fs *flag.FlagSet) sourceFlags {
	return sourceFlags{
		path:     fs.String("save", "", "Файл сохранения (.jsonl или .jsonl.zst)"),
		storeDir: fs.String("store", "", "Каталог хранилища сохранений"),
		name:     fs.String("name", "", "Имя сохранения в хранилище"),
	}
}

func (sf sourceFlags) load(ctx context.Context) ([]save.Brick, error) {
	src, closeFn, err := openSource(config.SaveConfig{Path: *sf.path, StoreDir: *sf.storeDir, Name: *sf.name})
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return src.Bricks(ctx)
}

// openSource выбирает источник кирпичей: файл имеет приоритет над хранилищем
func openSource(cfg config.SaveConfig) (save.Source, func(), error) {
	if cfg.Path != "" {
		return save.NewFileSource(cfg.Path), func() {}, nil
	}
	if cfg.Name == "" {
		return nil, nil, fmt.Errorf("укажите -save или -store/-name")
	}
	store, err := save.NewStore(cfg.StoreDir)
	if err != nil {
		return nil, nil, err
	}
	return save.NewStoreSource(store, cfg.Name), func() { store.Close() }, nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	src := addSourceFlags(fs)
	all := fs.Bool("all", false, "Показать все чанки, а не только превышающие лимиты")
	fs.Parse(args)

	bricks, err := src.load(context.Background())
	if err != nil {
		return err
	}

	start := time.Now()
	res := analysis.Analyze(bricks)
	took := time.Since(start)

	if res.Empty() {
		fmt.Println("В сохранении нет кирпичей.")
		return nil
	}

	fmt.Printf("Кирпичей: %d, коллайдеров: %d, чанков: %d (анализ за %s)\n",
		res.TotalBricks, res.TotalColliders, len(res.Chunks), took.Round(time.Millisecond))
	if len(res.UnknownShapes) > 0 {
		names := make([]string, 0, len(res.UnknownShapes))
		for name, n := range res.UnknownShapes {
			names = append(names, fmt.Sprintf("%s=%d", name, n))
		}
		sort.Strings(names)
		fmt.Printf("Неизвестные формы (вес %d): %s\n", collider.Fallback, strings.Join(names, ", "))
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ЧАНК\tКИРПИЧИ\tКОЛЛАЙДЕРЫ\tКОМПОНЕНТЫ\tСТАТУС")
	shown := 0
	for _, c := range res.Sorted() {
		s := *res.Chunks[c]
		sev := marker.Classify(s)
		if !*all && (sev == marker.Safe || sev == marker.Empty) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", c, s.Bricks, s.Colliders, s.Components, sev)
		shown++
	}
	if shown == 0 {
		fmt.Printf("Все чанки в пределах лимитов (%d коллайдеров, %d компонентов).\n", marker.ColliderLimit, marker.ComponentLimit)
		return nil
	}
	return tw.Flush()
}

func runCount(args []string) error {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	src := addSourceFlags(fs)
	x := fs.Float64("x", 0, "Мировая координата X")
	y := fs.Float64("y", 0, "Мировая координата Y")
	fs.Parse(args)

	bricks, err := src.load(context.Background())
	if err != nil {
		return err
	}

	res := analysis.Analyze(bricks)
	c := chunk.Of(vec.Vec3Float{X: *x, Y: *y})
	s, _ := res.Lookup(c)
	lo, hi := chunk.Bounds(c)
	fmt.Printf("Чанк %s [%s..%s]: %d кирпичей, %d коллайдеров, %d компонентов (%s)\n",
		c, lo, hi, s.Bricks, s.Colliders, s.Components, marker.Classify(s))
	return nil
}

func runGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	out := fs.String("out", "world.jsonl.zst", "Файл результата")
	seed := fs.Int64("seed", 1, "Сид генератора")
	width := fs.Int("width", 128, "Сторона области в клетках")
	height := fs.Int("height", 12, "Максимальная высота столбика")
	fs.Parse(args)

	g := save.NewGenerator(*seed, *width)
	g.MaxHeight = *height
	bricks := g.Generate()
	if err := save.WriteFile(*out, bricks); err != nil {
		return err
	}
	fmt.Printf("Записано %d кирпичей в %s\n", len(bricks), *out)
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	path := fs.String("save", "", "Файл сохранения")
	storeDir := fs.String("store", "saves", "Каталог хранилища")
	name := fs.String("name", "", "Имя сохранения (по умолчанию - имя файла)")
	fs.Parse(args)

	if *path == "" {
		return fmt.Errorf("укажите -save")
	}
	if *name == "" {
		base := (*path)[strings.LastIndexAny(*path, `/\`)+1:]
		*name = strings.TrimSuffix(strings.TrimSuffix(base, ".zst"), ".jsonl")
	}

	bricks, err := save.NewFileSource(*path).Bricks(context.Background())
	if err != nil {
		return err
	}
	store, err := save.NewStore(*storeDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(*name, bricks); err != nil {
		return err
	}
	fmt.Printf("Сохранение %s: %d кирпичей\n", *name, len(bricks))
	return nil
}

func runSaves(args []string) error {
	fs := flag.NewFlagSet("saves", flag.ExitOnError)
	storeDir := fs.String("store", "saves", "Каталог хранилища")
	del := fs.String("delete", "", "Удалить сохранение с этим именем")
	fs.Parse(args)

	store, err := save.NewStore(*storeDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if *del != "" {
		if err := store.Delete(*del); err != nil {
			return err
		}
		fmt.Printf("Удалено: %s\n", *del)
		return nil
	}

	names, err := store.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func runShapes(args []string) error {
	fs := flag.NewFlagSet("shapes", flag.ExitOnError)
	fs.Parse(args)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ФОРМА\tКОЛЛАЙДЕРЫ")
	for _, e := range collider.Table() {
		fmt.Fprintf(tw, "%s\t%d\n", e.Shape, e.Colliders)
	}
	fmt.Fprintf(tw, "(неизвестная)\t%d\n", collider.Fallback)
	return tw.Flush()
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML конфигурация (или CHUNKS_CONFIG)")
	operator := fs.String("operator", "", "Имя оператора из списка authorized")
	ttl := fs.Duration("ttl", 24*time.Hour, "Срок жизни токена")
	newSecret := fs.Bool("new-secret", false, "Сгенерировать новый секрет и выйти")
	fs.Parse(args)

	if *newSecret {
		secret, err := auth.GenerateSecureSecret()
		if err != nil {
			return err
		}
		fmt.Println(secret)
		return nil
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	secret := cfg.Server.GetJWTSecret()
	if secret == "" {
		return fmt.Errorf("jwt_secret не задан (server.jwt_secret или CHUNKS_JWT_SECRET)")
	}
	issuer, err := auth.NewTokenIssuer(secret, cfg.Authorized)
	if err != nil {
		return err
	}
	token, err := issuer.Issue(*operator, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
