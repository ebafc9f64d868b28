package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/scicatalog/catalog/config"
	"github.com/scicatalog/catalog/dnf"
	"github.com/scicatalog/catalog/dsselect"
	"github.com/scicatalog/catalog/ingest"
	"github.com/scicatalog/catalog/model"
	"github.com/scicatalog/catalog/name"
	"github.com/scicatalog/catalog/planner"
	"github.com/scicatalog/catalog/query"
	"github.com/scicatalog/catalog/store"
	"github.com/scicatalog/catalog/util"
)

var opts struct {
	Config string `short:"c" long:"config" description:"Path to catalogctl.yaml" value-name:"path" default:"catalogctl.yaml"`

	Bootstrap struct{} `command:"bootstrap" description:"Apply the schema to an empty database"`

	Ingest struct {
		Args struct {
			Manifest string `positional-arg-name:"manifest" description:"YAML manifest of files to register"`
		} `positional-args:"yes" required:"yes"`
	} `command:"ingest" description:"Register a batch of files from a manifest"`

	GetFile struct {
		Args struct {
			FID string `positional-arg-name:"fid" description:"File ID to fetch"`
		} `positional-args:"yes" required:"yes"`
	} `command:"get-file" description:"Fetch and print a single file"`

	SetPassword struct {
		Args struct {
			Username string `positional-arg-name:"username" description:"User to set a password for"`
		} `positional-args:"yes" required:"yes"`
	} `command:"set-password" description:"Prompt for and set a user's password"`

	Explain struct {
		Args struct {
			Dataset string `positional-arg-name:"namespace:name" description:"Dataset pattern to plan a basic query against"`
		} `positional-args:"yes" required:"yes"`
	} `command:"explain" description:"Print the SQL a basic query against a dataset pattern would run"`
}

func main() {
	util.InitSlog()

	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options] <command> [args]"
	args, err := parser.Parse()
	if err != nil {
		os.Exit(1)
	}
	_ = args

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch parser.Active.Name {
	case "bootstrap":
		runBootstrap(ctx, st)
	case "ingest":
		runIngest(ctx, st, opts.Ingest.Args.Manifest)
	case "get-file":
		runGetFile(ctx, st, opts.GetFile.Args.FID)
	case "set-password":
		runSetPassword(ctx, st, opts.SetPassword.Args.Username)
	case "explain":
		runExplain(opts.Explain.Args.Dataset)
	default:
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
}

func runBootstrap(ctx context.Context, st *store.Store) {
	if err := st.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	fmt.Println("schema applied")
}

func runIngest(ctx context.Context, st *store.Store, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("reading manifest: %v", err)
	}
	manifest, err := ingest.ParseManifest(data)
	if err != nil {
		log.Fatalf("parsing manifest: %v", err)
	}

	tx, err := st.BeginTx(ctx)
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	files, err := ingest.CreateMany(ctx, tx, ingest.Request{
		Files:   manifest.ToFiles(),
		Creator: manifest.Creator,
	})
	if err != nil {
		tx.Rollback()
		log.Fatalf("ingest: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("ingested %d files\n", len(files))
}

func runGetFile(ctx context.Context, st *store.Store, fid string) {
	f, err := st.GetFile(ctx, fid)
	if err != nil {
		log.Fatalf("get-file: %v", err)
	}
	if f == nil {
		fmt.Println("not found")
		return
	}
	pp.Println(f.ToPlain())
}

// runExplain compiles a basic query against a single dataset pattern (no
// metadata filter, no provenance) and prints the SQL the planner would run,
// after validating it parses as Postgres SQL.
func runExplain(datasetArg string) {
	namespace, bareName, err := name.Parse(datasetArg, "")
	if err != nil {
		log.Fatalf("explain: %v", err)
	}
	sel := &dsselect.Selector{Patterns: []dsselect.Pattern{{Namespace: namespace, Name: bareName}}}
	plan, err := planner.Compile(planner.Query{Selector: sel, Limit: -1}, -1, "", "", dnf.NewAliasCounter())
	if err != nil {
		log.Fatalf("explain: compile: %v", err)
	}
	if plan.Empty {
		fmt.Println("-- query is statically known to be empty")
		return
	}
	if err := query.Validate(plan.SQL); err != nil {
		log.Fatalf("explain: compiled SQL failed validation: %v", err)
	}
	fmt.Println(plan.SQL)
}

func runSetPassword(ctx context.Context, st *store.Store, username string) {
	u, err := st.GetUser(ctx, username)
	if err != nil {
		log.Fatalf("get-user: %v", err)
	}
	if u == nil {
		log.Fatalf("no such user: %s", username)
	}
	fmt.Print("New password: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}

	auth := u.Authenticators[model.AuthPassword]
	if auth == nil {
		auth = &model.Authenticator{Type: model.AuthPassword}
		if u.Authenticators == nil {
			u.Authenticators = map[model.AuthenticatorType]*model.Authenticator{}
		}
		u.Authenticators[model.AuthPassword] = auth
	}
	sum := sha256.Sum256(pass)
	auth.SetPassword(hex.EncodeToString(sum[:]))
	if err := st.SaveUser(ctx, u); err != nil {
		log.Fatalf("save-user: %v", err)
	}
	fmt.Println("password updated")
}
