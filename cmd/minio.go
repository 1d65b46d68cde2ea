package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/e-dream-ai/dreamstream/config"
	"github.com/e-dream-ai/dreamstream/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioStats  bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO media bucket",
	Long:  `Lists objects in the configured MinIO bucket, optionally filtered by prefix, with aggregate size statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		client := storage.GetMinioClient()
		ctx := context.Background()

		var count int64
		var totalSize int64
		for object := range client.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				log.Fatalf("Failed to list objects: %v", object.Err)
			}
			count++
			totalSize += object.Size
			if !minioStats {
				fmt.Printf("%10d  %s\n", object.Size, object.Key)
			}
		}
		fmt.Printf("%d objects, %d bytes total\n", count, totalSize)
	},
}

func init() {
	minioCmd.Flags().StringVar(&minioPrefix, "prefix", "", "object key prefix to filter by")
	minioCmd.Flags().BoolVar(&minioStats, "stats", false, "only print aggregate statistics")
	rootCmd.AddCommand(minioCmd)
}
