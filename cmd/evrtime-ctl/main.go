// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command evrtime-ctl is an interactive console for driving a
// bittable.Registry and an eventtable.Registry, the way an IOC shell
// drives records bound in-process rather than over a network: it is
// meant for bench diagnostics, not as the evrtimed wire client (see
// cmd/evrtimed for the networked server).
package main // import "github.com/go-lpc/evrtime/cmd/evrtime-ctl"

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/go-lpc/evrtime/bittable"
	"github.com/go-lpc/evrtime/eventtable"
)

const histFile = ".evrtime-ctl_history"

func main() {
	c := &console{
		tables: bittable.NewRegistry(),
		logs:   eventtable.NewRegistry(),
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(histFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	for {
		cmd, err := line.Prompt("evrtime> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "evrtime-ctl: %+v\n", err)
			break
		}

		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		line.AppendHistory(cmd)

		if cmd == "quit" || cmd == "exit" {
			break
		}
		if err := c.run(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "evrtime-ctl: %+v\n", err)
		}
	}

	if f, err := os.Create(histFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}

// console interprets a small line-oriented command language over an
// in-process set of tables and logs; the table.bind and log.bind commands
// reuse the exact device-link syntax bittable.Bind and eventtable.Bind parse.
type console struct {
	tables *bittable.Registry
	logs   *eventtable.Registry

	tableBind map[string]*bittable.Binding
	queueBind map[string]*eventtable.Binding
}

func (c *console) run(line string) error {
	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]

	switch verb {
	case "table.setwords":
		return c.tableSetWords(args)
	case "table.bind":
		return c.bindTable(args)
	case "table.update":
		return c.tableUpdate(args)
	case "table.render":
		return c.tableRender(args)
	case "table.report":
		return c.tables.Report(os.Stdout, 1)
	case "log.bind":
		return c.logBind(args)
	case "log.settick":
		return c.logSetTick(args)
	case "log.setevent":
		return c.logSetEvent(args)
	case "log.initbuf":
		return c.logInitBuf(args)
	case "log.push":
		return c.logPush(args)
	case "log.last":
		return c.logLast(args)
	case "log.readbuf":
		return c.logReadBuf(args)
	case "log.report":
		return c.logs.Report(os.Stdout, 1)
	case "help":
		printHelp()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", verb)
	}
}

func printHelp() {
	fmt.Println(`commands:
  table.setwords <name> <nbits>
  table.bind <alias> table=<name> action=<n>
  table.update <alias> <event>
  table.render <name>
  table.report
  log.bind <alias> log=<name> [queue=<name>] [autoclear=yes|no]
  log.settick <name> <nsecPerTick>
  log.setevent <log> <queue> <code>
  log.initbuf <log> <queue> <k>
  log.push <name> <evtst> <secs> <ticks> [...]
  log.last <log> <queue>
  log.readbuf <log> <queue> <nelm> <autoclear:0|1>
  log.report
  quit`)
}

func (c *console) tableSetWords(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: table.setwords <name> <nbits>")
	}
	n, err := strconv.ParseInt(args[1], 0, 32)
	if err != nil {
		return err
	}
	return c.tables.GetOrCreate(args[0]).SetWords(int32(n))
}

func (c *console) bindTable(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: table.bind <alias> table=<name> [action=<n>]")
	}
	alias := args[0]
	b, err := bittable.Bind(c.tables, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if c.tableBind == nil {
		c.tableBind = make(map[string]*bittable.Binding)
	}
	c.tableBind[alias] = b
	return nil
}

func (c *console) tableUpdate(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: table.update <alias> <event>")
	}
	b, ok := c.tableBind[args[0]]
	if !ok {
		return fmt.Errorf("unknown binding alias %q", args[0])
	}
	ev, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	return b.Table().Update(b, ev)
}

func (c *console) tableRender(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: table.render <name>")
	}
	t := c.tables.GetOrCreate(args[0])
	nEvents, wordsPerEvent := t.Shape()
	out := make([]uint32, nEvents*wordsPerEvent)
	nord, err := t.Render(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  render warning: %+v\n", err)
	}
	for i := 0; i < nord; i++ {
		if out[i] != 0 {
			fmt.Printf("  [%d] = 0x%x\n", i, out[i])
		}
	}
	return nil
}

func (c *console) logBind(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: log.bind <alias> log=<name> [queue=<name>] [autoclear=yes|no]")
	}
	alias := args[0]
	b, err := eventtable.Bind(c.logs, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if c.queueBind == nil {
		c.queueBind = make(map[string]*eventtable.Binding)
	}
	c.queueBind[alias] = b
	return nil
}

func (c *console) logSetTick(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: log.settick <name> <nsecPerTick>")
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return err
	}
	return c.logs.GetOrCreate(args[0]).SetTickScale(v)
}

func (c *console) logSetEvent(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: log.setevent <log> <queue> <code>")
	}
	code, err := strconv.Atoi(args[2])
	if err != nil {
		return err
	}
	l := c.logs.GetOrCreate(args[0])
	q := c.logs.GetOrCreateQueue(args[0], args[1])
	l.SetEvent(q, code)
	return nil
}

func (c *console) logInitBuf(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: log.initbuf <log> <queue> <k>")
	}
	k, err := strconv.Atoi(args[2])
	if err != nil {
		return err
	}
	l := c.logs.GetOrCreate(args[0])
	q := c.logs.GetOrCreateQueue(args[0], args[1])
	l.InitOutBuf(q, k)
	return nil
}

func (c *console) logPush(args []string) error {
	if len(args) < 4 || (len(args)-1)%3 != 0 {
		return fmt.Errorf("usage: log.push <name> <evtst> <secs> <ticks> [...]")
	}
	words := make([]uint32, len(args)-1)
	for i, a := range args[1:] {
		v, err := strconv.ParseUint(a, 0, 32)
		if err != nil {
			return err
		}
		words[i] = uint32(v)
	}
	c.logs.GetOrCreate(args[0]).PushLog(words)
	return nil
}

func (c *console) logLast(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: log.last <log> <queue>")
	}
	l := c.logs.GetOrCreate(args[0])
	q := c.logs.GetOrCreateQueue(args[0], args[1])
	ts, count := l.ReadLast(q)
	fmt.Printf("  sec=%d nsec=%d count=%d\n", ts.Sec, ts.Nsec, count)
	return nil
}

func (c *console) logReadBuf(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: log.readbuf <log> <queue> <nelm> <autoclear:0|1>")
	}
	nelm, err := strconv.Atoi(args[2])
	if err != nil {
		return err
	}
	autoclear := args[3] != "0"

	l := c.logs.GetOrCreate(args[0])
	q := c.logs.GetOrCreateQueue(args[0], args[1])
	out := make([]float64, nelm)
	t0, nord := l.ReadBuffer(q, out, autoclear)
	fmt.Printf("  t0=(%d,%d) n=%d\n", t0.Sec, t0.Nsec, nord)
	for i := 0; i < nord; i++ {
		fmt.Printf("    [%d] %g\n", i, out[i])
	}
	return nil
}
