package worker

// the following stores are always enabled
import (
	_ "git.sr.ht/~rjarry/sumview/worker/maildir"
)
