package orchestrator

import "fmt"

// Reset tears down the active runner, if any. Its subscriptions are released
// first, so nothing it still produces reaches the public streams. Pending
// input and running are set to false and published. With clearOutput the
// transcript and the input buffer are emptied and the empty transcript is
// published.
//
// Reset is idempotent. It waits for a launch in progress to finish.
func (o *Orchestrator) Reset(clearOutput bool) {
	o.launchMu.Lock()
	defer o.launchMu.Unlock()
	o.reset(clearOutput)
}

func (o *Orchestrator) reset(clearOutput bool) {
	var (
		out string
		seq uint64
	)
	o.mu.Lock()
	o.generation++
	if clearOutput {
		o.output = ""
		o.inputBuffer = o.inputBuffer[:0]
		out, seq = o.snapshotLocked()
	}
	runner := o.runner
	o.runner = nil
	o.serialized = nil
	o.pending, o.running = false, false
	o.mu.Unlock()

	o.subs.Release()

	if clearOutput {
		o.publishOutput(out, seq)
	}
	o.pendingStream.Publish(false)
	o.runningStream.Publish(false)

	if runner != nil {
		o.destroy(runner)
	}
}

// Stop clears the console and tears down the active runner.
func (o *Orchestrator) Stop() {
	o.Reset(true)
}

func (o *Orchestrator) destroy(runner Runner) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("runner destroy panicked", "panic", fmt.Sprint(r))
		}
	}()
	runner.Destroy()
}
