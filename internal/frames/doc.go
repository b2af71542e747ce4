// Package frames supplies decoded video frames to the analysis loop.
//
// Video decoding itself happens outside this program: a recording is
// exported to a directory of still images (for example with
// `ffmpeg -i trial.mp4 frames/%06d.png`). A DirSequence walks such a
// directory in lexical order and stamps each frame with index / fps seconds.
//
// All sources implement Source and hand out grayscale frames ready for the
// tracker. The decoded color frame is kept alongside for drawing overlays.
//
// ImageCache keeps decoded still images in memory for tools that look at the
// same image repeatedly.
package frames
