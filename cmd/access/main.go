package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vistoriapro/vistoria/internal/access/app"
	"github.com/vistoriapro/vistoria/pkg/cryptox"
)

func main() {
	genSecret := flag.Bool("gen-secret", false, "print a fresh ACCESS_LINK_SECRET and exit")
	flag.Parse()

	if *genSecret {
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			log.Fatalf("failed to generate secret: %v", err)
		}
		fmt.Fprintln(os.Stdout, secret)
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
