// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command evrtimed starts a TDAQ server exposing a bittable.Registry and
// an eventtable.Registry over the network: /table/... commands program
// and render event-receiver bit tables, /log/... commands push and drain
// demultiplexed event timestamps, and /report dumps both registries'
// diagnostics.
package main // import "github.com/go-lpc/evrtime/cmd/evrtimed"

import (
	"bytes"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/sbinet/pmon"

	"github.com/go-lpc/evrtime/bittable"
	"github.com/go-lpc/evrtime/eventtable"
	"github.com/go-lpc/evrtime/internal/alarm"
)

// logAlarm reports err at the ctx.Msg level its alarm severity implies:
// MAJOR is a recoverable advisory (Warnf), anything INVALID or COMM is
// Errorf, and a non-*alarm.Error is always Errorf.
func logAlarm(ctx tdaq.Context, format string, err error, args ...any) {
	var aerr *alarm.Error
	if e, ok := err.(*alarm.Error); ok {
		aerr = e
	}
	logArgs := append(append([]any{}, args...), err)
	if aerr != nil && aerr.Severity == alarm.Major {
		ctx.Msg.Warnf(format, logArgs...)
		return
	}
	ctx.Msg.Errorf(format, logArgs...)
}

var (
	doMon     = flag.Bool("pmon", false, "enable pmon self-monitoring")
	doMonFreq = flag.Duration("pmon-freq", time.Second, "pmon sampling frequency")
)

func main() {
	cmd := flags.New()

	dev := &server{
		tables: bittable.NewRegistry(),
		logs:   eventtable.NewRegistry(),
	}
	dev.bindings.table = make(map[string]*bittable.Binding)

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.CmdHandle("/table/setwords", dev.onTableSetWords)
	srv.CmdHandle("/table/update", dev.onTableUpdate)
	srv.CmdHandle("/table/render", dev.onTableRender)
	srv.CmdHandle("/log/settick", dev.onLogSetTick)
	srv.CmdHandle("/log/setevent", dev.onLogSetEvent)
	srv.CmdHandle("/log/initbuf", dev.onLogInitBuf)
	srv.CmdHandle("/log/push", dev.onLogPush)
	srv.CmdHandle("/log/clear", dev.onLogClear)
	srv.CmdHandle("/log/last", dev.onLogLast)
	srv.CmdHandle("/log/readbuf", dev.onLogReadBuf)
	srv.CmdHandle("/report", dev.onReport)

	if *doMon {
		go monitorSelf(*doMonFreq)
	}

	err := srv.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "evrtimed: error: %+v\n", err)
		os.Exit(1)
	}
}

// server binds the two in-memory engines to a TDAQ command endpoint.
// It carries no lock of its own: bittable.Registry and eventtable.Registry
// are each already safe for concurrent use.
type server struct {
	tables *bittable.Registry
	logs   *eventtable.Registry

	bindings struct {
		table map[string]*bittable.Binding
	}
}

// monitorSelf watches evrtimed's own process the way daq-boot watches
// the C++ DAQ processes it launches, writing samples to stderr.
func monitorSelf(freq time.Duration) {
	p, err := pmon.Monitor(os.Getpid())
	if err != nil {
		fmt.Fprintf(os.Stderr, "evrtimed: could not start self-monitoring: %+v\n", err)
		return
	}
	p.W = os.Stderr
	p.Freq = freq
	if err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "evrtimed: pmon: %+v\n", err)
	}
}

func (srv *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (srv *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.bindings.table = make(map[string]*bittable.Binding)
	return nil
}

func (srv *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	return nil
}

func (srv *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (srv *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command...")
	return nil
}

func (srv *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

// tableBinding returns (creating if necessary) the Binding for
// name/action, so repeated /table/update calls for the same action
// reuse the same prevEvent bookkeeping instead of always starting
// unbound.
func (srv *server) tableBinding(name string, action int32) *bittable.Binding {
	key := fmt.Sprintf("%s:%d", name, action)
	if b, ok := srv.bindings.table[key]; ok {
		return b
	}
	b, err := bittable.Bind(srv.tables, fmt.Sprintf("table=%s action=%d", name, action))
	if err != nil {
		// Bind only fails on a malformed link string; the one built
		// above is always well-formed, so this can't happen.
		panic(err)
	}
	srv.bindings.table[key] = b
	return b
}

func (srv *server) onTableSetWords(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()
	n := int32(dec.ReadU32())

	t := srv.tables.GetOrCreate(name)
	if err := t.SetWords(n); err != nil {
		logAlarm(ctx, "table %q SetWords(%d): %+v", err, name, n)
		return err
	}
	return nil
}

func (srv *server) onTableUpdate(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()
	action := int32(dec.ReadU32())
	event := int(int32(dec.ReadU32()))

	t := srv.tables.GetOrCreate(name)
	b, err := srv.tableBinding(name, action)
	if err != nil {
		ctx.Msg.Errorf("table %q binding for action=%d: %+v", name, action, err)
		return err
	}
	if err := t.Update(b, event); err != nil {
		logAlarm(ctx, "table %q Update(action=%d, event=%d): %+v", err, name, action, event)
		return err
	}
	return nil
}

func (srv *server) onTableRender(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()

	t := srv.tables.GetOrCreate(name)
	nEvents, wordsPerEvent := t.Shape()
	out := make([]uint32, nEvents*wordsPerEvent)
	_, err := t.Render(out)
	if err != nil {
		logAlarm(ctx, "table %q Render: %+v", err, name)
	}

	var buf bytes.Buffer
	for _, w := range out {
		binary.Write(&buf, binary.LittleEndian, w)
	}
	resp.Body = buf.Bytes()
	return nil
}

func (srv *server) onLogSetTick(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()
	hi := dec.ReadU32()
	lo := dec.ReadU32()
	nsecPerTick := math.Float64frombits(uint64(hi)<<32 | uint64(lo))

	l := srv.logs.GetOrCreate(name)
	if err := l.SetTickScale(nsecPerTick); err != nil {
		logAlarm(ctx, "log %q SetTickScale(%g): %+v", err, name, nsecPerTick)
		return err
	}
	return nil
}

func (srv *server) onLogSetEvent(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	logName := dec.ReadStr()
	queueName := dec.ReadStr()
	code := int(int32(dec.ReadU32()))

	l := srv.logs.GetOrCreate(logName)
	q := srv.logs.GetOrCreateQueue(logName, queueName)
	l.SetEvent(q, code)
	return nil
}

func (srv *server) onLogInitBuf(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	logName := dec.ReadStr()
	queueName := dec.ReadStr()
	k := int(dec.ReadU32())

	l := srv.logs.GetOrCreate(logName)
	q := srv.logs.GetOrCreateQueue(logName, queueName)
	l.InitOutBuf(q, k)
	return nil
}

func (srv *server) onLogPush(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()
	n := int(dec.ReadU32())

	words := make([]uint32, 3*n)
	for i := range words {
		words[i] = dec.ReadU32()
	}

	l := srv.logs.GetOrCreate(name)
	l.PushLog(words)
	return nil
}

func (srv *server) onLogClear(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	logName := dec.ReadStr()
	queueName := dec.ReadStr()
	clearFlag := int(dec.ReadU32())

	l := srv.logs.GetOrCreate(logName)
	q := srv.logs.GetOrCreateQueue(logName, queueName)
	l.Clear(q, clearFlag)
	return nil
}

func (srv *server) onLogLast(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	logName := dec.ReadStr()
	queueName := dec.ReadStr()

	l := srv.logs.GetOrCreate(logName)
	q := srv.logs.GetOrCreateQueue(logName, queueName)
	ts, count := l.ReadLast(q)

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, ts.Sec)
	binary.Write(&buf, binary.LittleEndian, ts.Nsec)
	binary.Write(&buf, binary.LittleEndian, count)
	resp.Body = buf.Bytes()
	return nil
}

func (srv *server) onLogReadBuf(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	logName := dec.ReadStr()
	queueName := dec.ReadStr()
	nelm := int(dec.ReadU32())
	autoclear := dec.ReadU32() != 0

	l := srv.logs.GetOrCreate(logName)
	q := srv.logs.GetOrCreateQueue(logName, queueName)

	out := make([]float64, nelm)
	t0, nord := l.ReadBuffer(q, out, autoclear)

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, t0.Sec)
	binary.Write(&buf, binary.LittleEndian, t0.Nsec)
	binary.Write(&buf, binary.LittleEndian, uint32(nord))
	for i := 0; i < nord; i++ {
		binary.Write(&buf, binary.LittleEndian, out[i])
	}
	resp.Body = buf.Bytes()
	return nil
}

func (srv *server) onReport(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	verbosity := int(dec.ReadU32())

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "bit tables:\n")
	if err := srv.tables.Report(&buf, verbosity); err != nil {
		return err
	}
	fmt.Fprintf(&buf, "event logs:\n")
	if err := srv.logs.Report(&buf, verbosity); err != nil {
		return err
	}

	resp.Body = buf.Bytes()
	return nil
}
