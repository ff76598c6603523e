package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrDetectionInProgress 冲突检测正在执行中（单飞锁被占用）
var ErrDetectionInProgress = errors.New("冲突检测任务正在执行中，请稍后再试")

// ErrLockNotAcquired 未能获取分布式锁
var ErrLockNotAcquired = errors.New("未能获取资源锁，请稍后重试")
