// Command voxelconv drives a single process.Processor pass from one job
// file: a JSON document naming a source representation, one or more
// target representations, and each target's op stack. It is a thin
// front end over the voxel/rawio/slicedio/container/codec/process
// packages — all the conversion logic lives there.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/voxelio/vxblock/container"
	"github.com/voxelio/vxblock/process"
	"github.com/voxelio/vxblock/rawio"
	"github.com/voxelio/vxblock/region"
	"github.com/voxelio/vxblock/slicedio"
	"github.com/voxelio/vxblock/voxel"
)

// repKind names which representation a Job endpoint uses.
type repKind string

const (
	repRaw      repKind = "raw"
	repSliced   repKind = "sliced"
	repEncoded  repKind = "encoded-blocked"
)

// opJSON describes one target's op stack in job-file form.
type opJSON struct {
	DownSample string `json:"down_sample,omitempty"` // "avg" or "max"
	MapOp      string `json:"map_op,omitempty"`       // "add","mul","min","max"
	MapK       int32  `json:"map_k,omitempty"`
	Stats      bool   `json:"stats,omitempty"`
}

// endpointJSON is one source or target entry.
type endpointJSON struct {
	Kind repKind          `json:"kind"`
	Desc voxel.SidecarDesc `json:"desc"`
	Ops  *opJSON          `json:"ops,omitempty"` // targets only
}

// rangeJSON optionally restricts conversion to a sub-window of the
// source extent; omitted means the full extent.
type rangeJSON struct {
	Src [3]uint64 `json:"src"`
	Dst [3]uint64 `json:"dst"`
}

// Job is the on-disk shape of a conversion job file, passed via
// --config/-c.
type Job struct {
	Source  endpointJSON   `json:"source"`
	Targets []endpointJSON `json:"targets"`
	Range   *rangeJSON     `json:"range,omitempty"`
}

// exampleJob is emitted by --print/-p as a schema reference.
func exampleJob() Job {
	return Job{
		Source: endpointJSON{
			Kind: repRaw,
			Desc: voxel.SidecarDesc{
				VolumeName:  "example",
				VoxelType:   "u16",
				VoxelFormat: "R",
				Extent:      [3]uint64{256, 256, 256},
				Space:       [3]float64{1, 1, 1},
				DataPath:    "input.raw",
			},
		},
		Targets: []endpointJSON{
			{
				Kind: repEncoded,
				Desc: voxel.SidecarDesc{
					VolumeName:  "example",
					VoxelType:   "u16",
					VoxelFormat: "R",
					Extent:      [3]uint64{256, 256, 256},
					Space:       [3]float64{1, 1, 1},
					BlockLength: 32,
					Padding:     2,
					VolumeCodec: "cabac-dct",
					DataPath:    "output.ebk",
				},
				Ops: &opJSON{DownSample: "avg", Stats: true},
			},
		},
	}
}

func main() {
	configPath := flag.String("config", "", "path to a job JSON file")
	flag.StringVar(configPath, "c", "", "shorthand for --config")
	printSchema := flag.Bool("print", false, "print the job-file JSON schema and exit")
	flag.BoolVar(printSchema, "p", false, "shorthand for --print")
	flag.Parse()

	if *printSchema {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exampleJob()); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "voxelconv: --config/-c is required (or pass --print/-p to see the schema)")
		os.Exit(2)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "voxelconv: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read job file: %w", err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("parse job file: %w", err)
	}
	return runJob(job)
}

// closer collects cleanup actions so every opened file/writer is closed
// regardless of which step fails.
type closer struct {
	fns []func() error
}

func (c *closer) add(fn func() error) { c.fns = append(c.fns, fn) }

func (c *closer) closeAll() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			fmt.Fprintf(os.Stderr, "voxelconv: close: %v\n", err)
		}
	}
}

func runJob(job Job) error {
	var cl closer
	defer cl.closeAll()

	src, extent, srcVoxelSize, err := openSource(job.Source, &cl)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	proc := process.NewProcessor()
	var rng *region.Window
	if job.Range != nil {
		rng = &region.Window{
			SrcX: job.Range.Src[0], DstX: job.Range.Dst[0],
			SrcY: job.Range.Src[1], DstY: job.Range.Dst[1],
			SrcZ: job.Range.Src[2], DstZ: job.Range.Dst[2],
		}
	}
	proc.SetSource(src, extent, srcVoxelSize, rng)

	for i, t := range job.Targets {
		sink, voxelSize, ops, err := openTarget(t, &cl)
		if err != nil {
			return fmt.Errorf("open target %d: %w", i, err)
		}
		proc.AddTarget(sink, voxelSize, ops)
	}

	return proc.Convert()
}

func openSource(ep endpointJSON, cl *closer) (process.Source, voxel.Extent, int, error) {
	switch ep.Kind {
	case repRaw:
		desc, err := ep.Desc.ToRawDesc()
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		r, err := rawio.OpenReader(desc)
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		cl.add(r.Close)
		return r, desc.Extent, desc.VoxelInfo.VoxelSize(), nil

	case repSliced:
		desc, err := ep.Desc.ToSlicedDesc()
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		r, err := slicedio.OpenReader(desc, 0)
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		return r, desc.Extent, desc.VoxelInfo.VoxelSize(), nil

	case repEncoded:
		desc, err := ep.Desc.ToEncodedBlockedDesc()
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		cr, err := container.Open(desc.DataPath)
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		cl.add(cr.Close)
		src, err := process.NewEncodedBlockedSource(desc, cr)
		if err != nil {
			return nil, voxel.Extent{}, 0, err
		}
		return src, desc.Extent, desc.VoxelInfo.VoxelSize(), nil

	default:
		return nil, voxel.Extent{}, 0, fmt.Errorf("unknown source kind %q", ep.Kind)
	}
}

func openTarget(ep endpointJSON, cl *closer) (process.TargetSink, int, process.OpStack, error) {
	ops, err := buildOps(ep.Ops)
	if err != nil {
		return nil, 0, process.OpStack{}, err
	}

	switch ep.Kind {
	case repRaw:
		desc, err := ep.Desc.ToRawDesc()
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		w, err := rawio.CreateWriter(desc)
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		cl.add(w.Close)
		return w, desc.VoxelInfo.VoxelSize(), ops, nil

	case repSliced:
		desc, err := ep.Desc.ToSlicedDesc()
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		w, err := slicedio.CreateWriter(desc)
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		cl.add(w.Close)
		return w, desc.VoxelInfo.VoxelSize(), ops, nil

	case repEncoded:
		desc, err := ep.Desc.ToEncodedBlockedDesc()
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		cw, err := container.Create(desc.DataPath, desc)
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		cl.add(cw.Close)
		sink, err := process.NewEncodedBlockedTarget(desc, cw)
		if err != nil {
			return nil, 0, process.OpStack{}, err
		}
		return sink, desc.VoxelInfo.VoxelSize(), ops, nil

	default:
		return nil, 0, process.OpStack{}, fmt.Errorf("unknown target kind %q", ep.Kind)
	}
}

func buildOps(oj *opJSON) (process.OpStack, error) {
	if oj == nil {
		return process.OpStack{}, nil
	}
	var ops process.OpStack
	switch oj.DownSample {
	case "":
	case "avg":
		ops.DownSample = &process.DownSampling{Reduce: process.ReduceAvg}
	case "max":
		ops.DownSample = &process.DownSampling{Reduce: process.ReduceMax}
	default:
		return ops, fmt.Errorf("unknown down_sample %q", oj.DownSample)
	}
	switch oj.MapOp {
	case "":
	case "add":
		ops.Mapping = &process.Mapping{Fn: process.MapAdd(oj.MapK)}
	case "mul":
		ops.Mapping = &process.Mapping{Fn: process.MapMul(oj.MapK)}
	case "min":
		ops.Mapping = &process.Mapping{Fn: process.MapMin(oj.MapK)}
	case "max":
		ops.Mapping = &process.Mapping{Fn: process.MapMax(oj.MapK)}
	default:
		return ops, fmt.Errorf("unknown map_op %q", oj.MapOp)
	}
	if oj.Stats {
		ops.Stats = process.NewStatistics(16)
	}
	return ops, nil
}
