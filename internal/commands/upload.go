package commands

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type UploadCmd struct {
	File   string `arg:"" help:"Local file to upload" type:"existingfile"`
	Key    string `short:"k" help:"Object key (default: random UUID with the file's extension)"`
	Bucket string `short:"b" help:"Logical ID of the target bucket (default: first bucket)"`
}

func newKey(deps Dependencies) string {
	if deps.NewKey != nil {
		return deps.NewKey()
	}
	return uuid.NewString()
}

func runUpload(cli CLI, deps Dependencies, out io.Writer) int {
	s, _, err := loadStack(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}
	p, err := newProvisioner(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	file, err := os.Open(cli.Upload.File)
	if err != nil {
		return exitWithError(out, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(cli.Upload.File))
	key := cli.Upload.Key
	if key == "" {
		key = newKey(deps) + ext
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	bucket, err := p.Upload(context.Background(), s, projectName(cli), cli.Upload.Bucket, key, contentType, file)
	if err != nil {
		return exitWithError(out, err)
	}
	ui := console(out)
	ui.Success(fmt.Sprintf("Uploaded s3://%s/%s", bucket, key))
	ui.Item("Content-Type", contentType)
	if ext != ".jpeg" && ext != ".png" {
		ui.Warn("only .jpeg and .png are accepted; this upload will be dead-lettered and trigger a rejection email")
	}
	return 0
}
