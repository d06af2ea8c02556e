package constants

const DefaultWavelength float64 = 1.064      // [um] Nd:YAG
const DefaultSamples = 101                   // grid points, both ends included
const DefaultApertureDiameter float64 = 50e3 // [um]
const ClipWarningRatio = 0.5                 // beam radius / aperture diameter
