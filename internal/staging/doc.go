// Package staging owns the filesystem namespace the two pipeline loops
// coordinate through. The rip loop writes rip-in-progress and staged
// directories; the transcode loop consumes staged, writes
// transcode-in-progress, and promotes to the output tree. Directory
// existence under the staged tree is the only handoff signal, so readers
// must verify write stability before touching any staged file.
package staging
