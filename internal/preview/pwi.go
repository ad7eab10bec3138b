package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/msageha/aslrun/internal/compile"
	"github.com/msageha/aslrun/internal/fsl"
	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/validate"
)

// PWI generates a mean perfusion-weighted image for the accepted session
// by running asl_file in a temporary workspace. The workspace is removed
// on every path, including failures. When dest is non-empty the image is
// copied there; the returned slice is the image's dimension sizes.
func PWI(ctx context.Context, exe *fsl.Executor, images validate.ImageLoader, acc *validate.Accepted, dest string) ([]int, error) {
	tmp, err := os.MkdirTemp("", "aslrun-pwi-")
	if err != nil {
		return nil, fmt.Errorf("create preview workspace: %w", err)
	}
	defer os.RemoveAll(tmp)

	mean := filepath.Join(tmp, "mean.nii.gz")
	cmd := compile.PreviewCommand(acc, mean)
	if _, err := exe.Run(ctx, model.CommandSequence{cmd}); err != nil {
		return nil, fmt.Errorf("generate perfusion-weighted image: %w", err)
	}

	shape, err := images.Shape(mean)
	if err != nil {
		return nil, fmt.Errorf("preview output: %w", err)
	}
	if dest != "" {
		if err := copyFile(mean, dest); err != nil {
			return nil, fmt.Errorf("copy preview image: %w", err)
		}
	}
	return shape, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
