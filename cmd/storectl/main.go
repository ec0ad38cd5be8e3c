// storectl は管理用のCLI。APIと同じDB設定（.env / CONFIG_FILE / 環境変数）を読む。
//
//	storectl migrate
//	storectl seed
//	storectl products [-low] [-search q]
//	storectl customers [-search q]
//	storectl orders [-status P|C|F] [-customer N]
//	storectl set-payment -order N -status C
//	storectl clear-inventory -ids 1,2,3
//	storectl audit [-limit N] [-action A] [-resource R -id N]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/infra/db"

	"github.com/labstack/gommon/log"
)

func main() {
	actor := flag.Int64("actor", 1, "user id recorded in audit logs")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	dbCfg, err := config.LoadDB()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gdb, err := db.Connect(dbCfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(gdb, os.Stdout, *actor)
	if err := c.exec(ctx, flag.Args()); err != nil {
		log.Errorf("%s: %v", flag.Arg(0), err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storectl [-actor N] <migrate|seed|products|customers|orders|set-payment|clear-inventory|audit> [flags]")
	flag.PrintDefaults()
}
