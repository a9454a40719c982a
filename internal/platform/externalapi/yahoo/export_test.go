package yahoo

// RangeParam exposes rangeParam to the external test package.
var RangeParam = rangeParam
