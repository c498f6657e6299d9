// Package prime provides the primality oracle evaluated by workers.
package prime

// IsPrime は n が素数かどうかを試し割りで判定する
// 共有状態を持たないため同期なしで並行に呼び出せる
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}

	for i := 3; i <= n/i; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// Count は [1, maxNumber] に含まれる素数の個数を逐次計算する
func Count(maxNumber int) int {
	count := 0
	for n := 2; n <= maxNumber; n++ {
		if IsPrime(n) {
			count++
		}
	}
	return count
}

// Sequential は [1, maxNumber] の素数を昇順で返す
func Sequential(maxNumber int) []int {
	var primes []int
	for n := 2; n <= maxNumber; n++ {
		if IsPrime(n) {
			primes = append(primes, n)
		}
	}
	return primes
}
