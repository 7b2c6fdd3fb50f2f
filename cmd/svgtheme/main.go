package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/djherbis/atime"
	humanize "github.com/dustin/go-humanize"
	"github.com/matryer/try"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/svgtheme"
	"github.com/tdewolff/svgtheme/theme"
)

// Version is the current svgtheme version.
var Version = "built from source"

var (
	quiet              bool
	verbose            int
	preserveMode       bool
	preserveOwnership  bool
	preserveTimestamps bool
	rewriter           *svgtheme.Rewriter
)

// Task is a single file rewrite.
type Task struct {
	src string
	dst string // empty means stdout
}

// Loggers.
var (
	Error   *log.Logger
	Warning *log.Logger
	Info    *log.Logger
)

func main() {
	// os.Exit doesn't execute pending defer calls, this is fixed by encapsulating run()
	os.Exit(run())
}

func run() int {
	var inputs []string
	var output string
	var themeName string
	var themesPath string
	var mappingPath string
	var forceFill bool
	var list bool
	var watch bool
	var preserve []string
	var version bool

	defaultPreserve := []string{"mode", "timestamps"}
	if supportsGetOwnership {
		defaultPreserve = []string{"mode", "ownership", "timestamps"}
	}

	f := argp.New("svgtheme")
	f.AddRest(&inputs, "inputs", "Input SVG files, leave blank to use stdin")
	f.AddOpt(&output, "o", "output", nil, "Output file or directory, leave blank to rewrite inputs in place")
	f.AddOpt(&themeName, "", "theme", nil, "Theme whose palette is written to the style block")
	f.AddOpt(&forceFill, "", "force-fill", false, "Force a fill class on markers derived from the first propagated class")
	f.AddOpt(&themesPath, "", "themes", "themes.ini", "Path to the themes INI file")
	f.AddOpt(&mappingPath, "", "mapping", "color_mapping.ini", "Path to the color mapping INI file")
	f.AddOpt(&list, "l", "list", false, "List available themes and their colors")
	f.AddOpt(&quiet, "q", "quiet", false, "Quiet mode to suppress all output")
	f.AddOpt(argp.Count{I: &verbose}, "v", "verbose", nil, "Verbose mode, set twice for more verbosity")
	f.AddOpt(&watch, "w", "watch", false, "Watch files and rewrite upon changes")
	f.AddOpt(&preserve, "p", "preserve", defaultPreserve, "Preserve options (mode, ownership, timestamps, all)")
	f.AddOpt(&version, "", "version", false, "Version")
	f.Parse()

	if version {
		if !quiet {
			fmt.Printf("svgtheme %s\n", Version)
		}
		return 0
	}

	Error = log.New(ioutil.Discard, "", 0)
	Warning = log.New(ioutil.Discard, "", 0)
	Info = log.New(ioutil.Discard, "", 0)
	if !quiet {
		Error = log.New(os.Stderr, "ERROR: ", 0)
		if 0 < verbose {
			Warning = log.New(os.Stderr, "WARNING: ", 0)
		}
		if 1 < verbose {
			Info = log.New(os.Stderr, "INFO: ", 0)
		}
	}

	themes, err := theme.LoadThemes(themesPath)
	if err != nil {
		Error.Println(err)
		return 1
	}
	if list {
		if !quiet {
			for _, name := range themes.Names() {
				fmt.Println(name)
				palette := themes[name]
				colors := make([]string, 0, len(palette))
				for color := range palette {
					colors = append(colors, color)
				}
				sort.Strings(colors)
				for _, color := range colors {
					fmt.Println("  " + color + "  " + palette[color])
				}
			}
		}
		return 0
	}

	var colors theme.Palette
	if themeName != "" {
		if colors, err = themes.Select(themeName); err != nil {
			Error.Println(err)
			return 1
		}
	} else {
		Info.Println("no theme selected, style block stays untouched")
	}
	mapping, err := theme.LoadMapping(mappingPath, themes)
	if err != nil {
		Error.Println(err)
		return 1
	}
	rewriter = &svgtheme.Rewriter{Colors: colors, Mapping: mapping, ForceFill: forceFill}

	if len(inputs) == 1 && inputs[0] == "-" {
		inputs = inputs[:0] // stdin
	}
	if output == "-" {
		output = "" // stdout
	}
	useStdin := len(inputs) == 0

	if useStdin && watch {
		Error.Println("--watch doesn't work with stdin, specify input files")
		return 1
	}
	if f.IsSet("preserve") && useStdin {
		Error.Println("--preserve cannot be used together with stdin")
		return 1
	}
	for _, option := range preserve {
		switch option {
		case "all":
			preserveMode = true
			preserveOwnership = true
			preserveTimestamps = true
		case "mode":
			preserveMode = true
		case "ownership":
			preserveOwnership = true
		case "timestamps":
			preserveTimestamps = true
		}
	}
	if preserveOwnership && !supportsGetOwnership {
		Warning.Println("preserve ownership not supported on platform")
	}

	dirDst := output != "" && IsDir(output)
	if !dirDst && output != "" && 1 < len(inputs) {
		Error.Println("output must be a directory for multiple input files")
		return 1
	}

	var tasks []Task
	if useStdin {
		tasks = append(tasks, Task{"", output})
	} else {
		for _, input := range inputs {
			input = filepath.Clean(input)
			info, err := os.Stat(input)
			if err != nil {
				Error.Println(err)
				return 1
			} else if !info.Mode().IsRegular() {
				Error.Println("not a file:", input)
				return 1
			}
			task, err := NewTask(input, output, dirDst)
			if err != nil {
				Error.Println(err)
				return 1
			}
			tasks = append(tasks, task)
		}
	}

	fails := 0
	start := time.Now()
	if !watch && (len(tasks) == 1 || 0 < verbose) {
		for _, task := range tasks {
			if ok := rewrite(task); !ok {
				fails++
			}
		}
	} else {
		numWorkers := runtime.NumCPU()
		if 0 < verbose {
			numWorkers = 1
		} else if numWorkers < 4 {
			numWorkers = 4
		}

		chanTasks := make(chan Task, 20)
		chanFails := make(chan int, numWorkers)
		for n := 0; n < numWorkers; n++ {
			go rewriteWorker(chanTasks, chanFails)
		}

		if !watch {
			for _, task := range tasks {
				chanTasks <- task
			}
		} else {
			watcher, err := NewWatcher()
			if err != nil {
				Error.Println(err)
				return 1
			}
			defer watcher.Close()
			changes := watcher.Run()

			taskBySrc := map[string]Task{}
			for _, task := range tasks {
				taskBySrc[task.src] = task
			}
			for _, filename := range inputs {
				if err := watcher.AddPath(filename); err != nil {
					Error.Println(err)
					return 1
				}
			}
			for _, task := range tasks {
				watcher.IgnoreNext(task.dst)
				chanTasks <- task
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			for changes != nil {
				select {
				case <-c:
					watcher.Close()
				case file, ok := <-changes:
					if !ok {
						changes = nil
						break
					}
					task, ok := taskBySrc[filepath.Clean(file)]
					if !ok {
						break
					}
					watcher.IgnoreNext(task.dst) // skip change on output
					chanTasks <- task
				}
			}
		}

		close(chanTasks)
		for n := 0; n < numWorkers; n++ {
			fails += <-chanFails
		}
	}

	if !watch {
		Info.Println("finished in", time.Since(start))
	}
	if 0 < fails {
		return 1
	}
	return 0
}

// NewTask returns a rewrite task for input. An empty output means rewriting
// in place; a directory output keeps the input's base name.
func NewTask(input, output string, dirDst bool) (Task, error) {
	if output == "" {
		return Task{input, input}, nil
	}
	if dirDst {
		return Task{input, filepath.Join(output, filepath.Base(input))}, nil
	}
	return Task{input, filepath.Clean(output)}, nil
}

func rewriteWorker(chanTasks <-chan Task, chanFails chan<- int) {
	fails := 0
	for task := range chanTasks {
		if ok := rewrite(task); !ok {
			fails++
		}
	}
	chanFails <- fails
}

func rewrite(t Task) bool {
	srcName := t.src
	if srcName == "" {
		srcName = "stdin"
	}
	dstName := t.dst
	if dstName == "" {
		dstName = "stdout"
	}

	// rename original when overwriting
	src := t.src
	if t.src != "" && t.dst != "" {
		if sameFile, _ := SameFile(t.src, t.dst); sameFile {
			src = t.src + ".bak"
			err := try.Do(func(attempt int) (bool, error) {
				ferr := os.Rename(t.dst, src)
				return attempt < 5, ferr
			})
			if err != nil {
				Error.Println(err)
				return false
			}
		}
	}

	fr, err := openInputFile(src)
	if err != nil {
		Error.Println(err)
		return false
	}
	fw, err := openOutputFile(t.dst)
	if err != nil {
		Error.Println(err)
		fr.Close()
		return false
	}

	b, err := ioutil.ReadAll(fr)
	if err != nil {
		fr.Close()
		fw.Close()
		Error.Println("cannot rewrite "+srcName+":", err)
		return false
	}
	w := bytes.NewBuffer(make([]byte, 0, len(b)))

	success := true
	startTime := time.Now()
	if err = rewriter.Process(w, bytes.NewReader(b)); err != nil {
		w = bytes.NewBuffer(b) // copy original
		Error.Println("cannot rewrite "+srcName+":", err)
		success = false
	}

	rLen, wLen := len(b), w.Len()
	if _, ferr := io.Copy(fw, w); ferr != nil && err == nil {
		err = ferr
		Error.Println("cannot write "+dstName+":", ferr)
		success = false
	}
	fr.Close()
	fw.Close()

	if !quiet && success {
		dur := time.Since(startTime)
		stats := fmt.Sprintf("(%9v, %6v, %6v)", dur, humanize.Bytes(uint64(rLen)), humanize.Bytes(uint64(wLen)))
		if srcName != dstName {
			fmt.Println(stats, "-", srcName, "to", dstName)
		} else {
			fmt.Println(stats, "-", srcName)
		}
	}

	if success {
		preserveAttributes(src, t.dst)
	}

	// remove original that was renamed, or put it back on failure
	if src == t.dst+".bak" {
		if err == nil {
			if err = os.Remove(src); err != nil {
				Error.Println(err)
				return false
			}
		} else {
			if err = os.Remove(t.dst); err != nil {
				Error.Println(err)
				return false
			} else if err = os.Rename(src, t.dst); err != nil {
				Error.Println(err)
				return false
			}
			return false
		}
	}
	return success
}

// preserveAttributes copies mode, ownership and timestamps from src onto dst
// as far as the preserve options allow.
func preserveAttributes(src, dst string) {
	if src == "" || dst == "" || src == dst {
		return
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		Warning.Println(err)
		return
	}
	if preserveMode {
		if err = os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
			Warning.Println(err)
		}
	}
	if preserveOwnership {
		if uid, gid, ok := getOwnership(srcInfo); ok {
			if err = os.Chown(dst, uid, gid); err != nil {
				Warning.Println(err)
			}
		}
	}
	if preserveTimestamps {
		if err = os.Chtimes(dst, atime.Get(srcInfo), srcInfo.ModTime()); err != nil {
			Warning.Println(err)
		}
	}
}
