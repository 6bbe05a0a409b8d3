// Package pixconv holds producer-side pixel conversions that run on the CPU
// outside the GPU pipeline.
//
// RGB24 frames have no texel layout of their own and are widened to RGB32
// here before upload. I420ToBGRX is a reference converter used to check the
// GPU output. ToImage and the orientation helpers turn read-back texels into
// images for encoding.
package pixconv
