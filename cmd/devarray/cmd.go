package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/devarray/internal/array"
	"github.com/born-ml/devarray/internal/backend/cpu"
	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/device/webgpu"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/envconfig"
)

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devarray",
		Short:         "Device array runtime tools",
		SilenceUsage:  true,
		SilenceErrors: false,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devarray %s\n", version)
		},
	}

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "List environment settings",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Open the configured device and describe it",
		Args:  cobra.NoArgs,
		RunE:  InfoHandler,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Time matrix products and report buffer pool activity",
		Args:  cobra.NoArgs,
		RunE:  BenchHandler,
	}
	benchCmd.Flags().Int("size", 256, "Matrix order")
	benchCmd.Flags().Int("iterations", 10, "Number of products")
	benchCmd.Flags().String("type", "float32", "Element type")

	rootCmd.AddCommand(versionCmd, envCmd, infoCmd, benchCmd)
	return rootCmd
}

// openContext creates a context on the device named by DEVARRAY_DEVICE.
func openContext() (*device.Context, error) {
	var open device.Opener
	switch name := envconfig.Device(); name {
	case host.Name:
		open = host.Opener(envconfig.HostConfig(), nil)
	case webgpu.Name:
		open = webgpu.Opener(int(envconfig.HostMemoryLimit()))
	default:
		return nil, fmt.Errorf("unknown device %q", name)
	}

	ctx := device.NewContext(open,
		device.WithLogger(slog.Default()),
		device.WithMaxPerBucket(int(envconfig.PoolMaxPerBucket())))
	if _, err := ctx.Create(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// EnvHandler prints every setting with its current value.
func EnvHandler(cmd *cobra.Command, _ []string) error {
	vars := envconfig.AsMap()
	values := envconfig.Values()

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	table := newTable(cmd.OutOrStdout(), "NAME", "VALUE", "DESCRIPTION")
	for _, k := range keys {
		table.Append([]string{k, values[k], vars[k].Description})
	}
	table.Render()
	return nil
}

// InfoHandler opens the device and prints its properties.
func InfoHandler(cmd *cobra.Command, _ []string) error {
	ctx, err := openContext()
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	table := newTable(cmd.OutOrStdout(), "PROPERTY", "VALUE")
	table.AppendBulk([][]string{
		{"device", ctx.DriverName()},
		{"context", ctx.Label()},
		{"epoch", ctx.ActiveEpoch().String()},
		{"fp64", strconv.FormatBool(ctx.FP64())},
		{"pool max per size", strconv.Itoa(ctx.Pool().MaxPerBucket())},
	})
	table.Render()
	return nil
}

// BenchHandler multiplies deterministic matrices and reports
// the time per product along with pool statistics.
func BenchHandler(cmd *cobra.Command, _ []string) error {
	n, err := cmd.Flags().GetInt("size")
	if err != nil {
		return err
	}
	iterations, err := cmd.Flags().GetInt("iterations")
	if err != nil {
		return err
	}
	typeName, err := cmd.Flags().GetString("type")
	if err != nil {
		return err
	}
	dt, err := dtype.Parse(typeName)
	if err != nil {
		return err
	}
	if n <= 0 || iterations <= 0 {
		return fmt.Errorf("%w: size and iterations must be positive", device.ErrInvalidArgument)
	}

	ctx, err := openContext()
	if err != nil {
		return err
	}
	defer ctx.Destroy()
	rt := array.NewRuntime(ctx, cpu.New(envconfig.Parallel()))

	line, err := array.Linspace(rt, dt, 0, 1, n*n)
	if err != nil {
		return err
	}
	defer line.Release()
	a, err := line.Reshape(n, n)
	if err != nil {
		return err
	}
	defer a.Release()
	id, err := array.Eye(rt, dt, n, n)
	if err != nil {
		return err
	}
	defer id.Release()
	b, err := a.Add(id)
	if err != nil {
		return err
	}
	defer b.Release()

	start := time.Now()
	for range iterations {
		c, err := a.MTimes(b)
		if err != nil {
			return err
		}
		c.Release()
	}
	elapsed := time.Since(start)

	stats := ctx.Pool().Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d x %d %s products: %d in %s (%s each)\n\n",
		n, n, dt, iterations, elapsed, elapsed/time.Duration(iterations))

	table := newTable(out, "ALLOCATIONS", "HITS", "MISSES", "EVICTIONS", "FLUSHES", "RETAINED", "ASSIGNED")
	table.Append([]string{
		strconv.FormatUint(stats.Allocations, 10),
		strconv.FormatUint(stats.Hits, 10),
		strconv.FormatUint(stats.Misses, 10),
		strconv.FormatUint(stats.Evictions, 10),
		strconv.FormatUint(stats.Flushes, 10),
		strconv.Itoa(stats.Retained),
		strconv.Itoa(stats.Assigned),
	})
	table.Render()

	buckets := ctx.Pool().Buckets()
	if len(buckets) > 0 {
		fmt.Fprintln(out)
		bt := newTable(out, "BUFFER SIZE", "RETAINED")
		for _, b := range buckets {
			bt.Append([]string{strconv.Itoa(b.Size), strconv.Itoa(b.Count)})
		}
		bt.Render()
	}
	return nil
}
