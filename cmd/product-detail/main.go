package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/config"
)

// Looks up a single supplier product by pid or sku, for checking what the
// supplier reports before or after a sync.
func main() {
	_ = godotenv.Load()

	pid := flag.String("pid", "", "supplier product id")
	sku := flag.String("sku", "", "supplier product sku (used when -pid is empty)")
	flag.Parse()

	if *pid == "" && *sku == "" {
		fmt.Fprintln(os.Stderr, "usage: product-detail -pid <id> | -sku <sku>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	tokens := cj.NewTokenProvider(cfg.CJ, logger)
	client := cj.NewClient(cfg.CJ, tokens, logger)

	product, err := client.GetProductDetail(context.Background(), *pid, *sku)
	if err != nil {
		logger.Fatal("Product detail lookup failed", zap.Error(err))
	}

	fmt.Printf("pid: %s\n", product.PID)
	fmt.Printf("sku: %s\n", product.SKU)
	fmt.Printf("name: %s\n", product.Name)
	fmt.Printf("sell price: %.2f\n", product.SellPrice)
	fmt.Printf("stock: %d\n", product.Stock)
	if product.CategoryName != "" {
		fmt.Printf("category: %s (%s)\n", product.CategoryName, product.CategoryID)
	}
	for _, v := range product.Variants {
		fmt.Printf("  variant %s: %s sku=%s price=%.2f stock=%d\n",
			v.VID, v.Name, v.SKU, v.SellPrice, v.Stock)
	}
}
