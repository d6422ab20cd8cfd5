// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

// Package upipe contains the pipeline substrate: pipes, their managers,
// the probe event chain, control commands and capability requests.
//
// A pipeline is a graph of pipes exchanging uref.Ref units downstream
// while events travel upstream through each pipe's probe chain and
// control commands travel downstream through Control. The interfaces and
// helper mixins here are designed to behave the way a Go developer
// expects: pipes are ordinary structs embedding Core and whichever
// helpers they need, events and commands are plain typed structs matched
// with a type switch, and errors are sentinel values compared with
// errors.Is.
//
// Concurrency follows a single-thread-per-pipe discipline: a pipe's
// Input and Control run on the thread of the upump manager driving it,
// and its output always happens inside its own Input or inside a pump
// callback it owns. Crossing threads is explicit, through a queue pair.
package upipe

// vim: foldmethod=marker
