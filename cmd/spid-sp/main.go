// Command spid-sp inspects a service provider configuration: it prints the
// signed SPID or CIE metadata and lists the identity providers loaded from
// the configured metadata directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	spidsp "github.com/dgsspa/spid-sp"
)

func main() {
	configPath := flag.String("config", "spid.yaml", "Path to the YAML configuration file")
	cie := flag.Bool("cie", false, "Print CIE metadata instead of SPID metadata")
	listIdPs := flag.Bool("idps", false, "List identity providers from the metadata directory")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := spidsp.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading configuration", zap.Error(err))
	}

	sp, err := spidsp.NewServiceProvider(cfg, spidsp.WithLogger(logger))
	if err != nil {
		logger.Fatal("building service provider", zap.Error(err))
	}

	if *listIdPs {
		for _, idp := range sp.IdentityProviders() {
			fmt.Printf("%s\n  sso: %s\n  slo: %s\n", idp.EntityID, idp.SSOTargetURL, idp.SLOTargetURL)
		}
		return
	}

	var metadata []byte
	if *cie {
		metadata, err = sp.CieMetadata()
	} else {
		metadata, err = sp.Metadata()
	}
	if err != nil {
		logger.Fatal("building metadata", zap.Error(err))
	}
	os.Stdout.Write(metadata)
}
