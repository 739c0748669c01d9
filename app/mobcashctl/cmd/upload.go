package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

type uploadFile = resources.File

var (
	uploadKind string
	uploadJSON bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload an image and print its URL",
	Long: `Uploads an image (at most 5 MiB) to the back office and prints the stored URL.
Non-image files and oversized files are rejected before anything is sent.

Kinds:
  proof   payment proof of a recharge (default)
  image   platform logo

Examples:
  mobcashctl upload recu.png
  mobcashctl upload logo.jpg --kind image --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseUploadKind(uploadKind)
		if err != nil {
			return err
		}

		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()

		ctx := context.Background()
		url, err := uploadWithProgress(args[0], func(file uploadFile) (string, error) {
			return console.Uploads.Upload(ctx, file, kind)
		})
		if err != nil {
			return reportOutcome(console.Notifier, err)
		}

		if uploadJSON {
			return printJSON(map[string]string{"url": url})
		}
		if err := reportOutcome(console.Notifier, nil); err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVarP(&uploadKind, "kind", "k", "proof", "What the image is for: proof or image")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "Output in JSON format")
}

func parseUploadKind(s string) (resources.UploadKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "proof":
		return resources.UploadPaymentProof, nil
	case "image", "logo":
		return resources.UploadPlatformImage, nil
	default:
		return 0, fmt.Errorf("unknown upload kind %q (expected proof or image)", s)
	}
}

// uploadWithProgress opens path and hands it to send with a byte progress bar
// on stderr wrapped around its content.
func uploadWithProgress(path string, send func(uploadFile) (string, error)) (string, error) {
	file, closer, err := resources.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = closer.Close()
	}()

	bar := progressbar.NewOptions64(file.Size,
		progressbar.OptionSetDescription("Uploading "+file.Name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	reader := progressbar.NewReader(file.Body, bar)
	file.Body = &reader

	url, err := send(file)
	if err != nil {
		_ = bar.Clear()
		return "", err
	}
	_ = bar.Finish()
	return url, nil
}
