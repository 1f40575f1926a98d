// Package pipeline provides a framework for executing publish steps in sequence.
//
// Publishing a file is processed through multiple stages: a media metadata
// check followed by one upload per requested platform. Each stage is
// implemented as a Step that receives the current PublishReport and can
// modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of platforms without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between uploads
//
// Steps always run one after another. There is no batch or parallel mode.
package pipeline
