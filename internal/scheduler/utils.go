package scheduler

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// 非负整数的整数次幂
func intPow(base, exp int64) int64 {
	result := int64(1)
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}
